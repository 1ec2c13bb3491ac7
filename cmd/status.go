package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault and index status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(loadedConf, false)
		if err != nil {
			return err
		}
		defer a.Close()

		st := a.status()
		fmt.Printf("Vault:     %s\n", st.VaultPath)
		fmt.Printf("Data dir:  %s\n", a.dir.Root())
		fmt.Printf("Notes:     %d tracked\n", st.TrackedDocuments)
		fmt.Printf("Chunks:    %d\n", st.Chunks)
		fmt.Printf("Embedding: %s/%s\n", a.cfg.Embedding.Provider, a.cfg.EmbeddingModel())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
