package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vaultsearch/internal/progress"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync the vault, then keep the index up to date as notes change",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(loadedConf, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("watching vault", "vault", a.vault.Root())
		return a.syncAndWatch(ctx, progress.NewReporter())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
