package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vaultsearch/internal/progress"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Sync the vault into the vector index",
	Long: `Walks the vault and indexes every new or changed note. Notes whose
content fingerprint is unchanged are skipped. Use --reset to drop the index
and rebuild it from scratch.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("reset", false, "drop the index and sync state before scanning")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	reset, _ := cmd.Flags().GetBool("reset")

	a, err := openApp(loadedConf, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if reset {
		if err := a.reset(); err != nil {
			return fmt.Errorf("resetting index: %w", err)
		}
		logger.Info("index reset", "data_dir", a.dir.Root())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := a.scan(ctx, progress.NewReporter())
	if err != nil {
		return err
	}

	fmt.Printf("Scanned %d notes in %s: %d indexed, %d unchanged, %d failed\n",
		report.Total, report.Duration.Round(time.Millisecond), report.Indexed, report.Unchanged, report.Failed)
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d notes failed to index", report.Failed)
	}
	return nil
}
