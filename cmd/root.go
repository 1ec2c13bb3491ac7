package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vaultsearch/internal/config"
	"github.com/ziadkadry99/vaultsearch/internal/logging"
)

var (
	cfgFile string
	verbose bool

	logger     = slog.Default()
	closeLog   = func() {}
	loadedConf *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vaultsearch",
	Short: "Semantic search over an Obsidian vault",
	Long: `vaultsearch indexes the markdown notes of an Obsidian vault into a local
vector index, keeps the index in sync as notes change, and answers
semantic queries from the terminal, over HTTP, or as MCP tools for
AI agents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		l, cleanup, err := logging.SetupDefault(logging.Config{
			Level:    level,
			Format:   cfg.Log.Format,
			FilePath: cfg.Log.File,
		})
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		logger, closeLog, loadedConf = l, cleanup, cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SilenceErrors = true
}
