package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vaultsearch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize vaultsearch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that locates your Obsidian vault, picks an embedding provider, and writes a .vaultsearch.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
