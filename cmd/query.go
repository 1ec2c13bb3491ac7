package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vaultsearch/internal/search"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Semantically search the vault",
	Long: `Searches the vector index using a natural language query. By default the
best matching chunks are printed; --full prints whole notes reassembled from
their chunks instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 0, "maximum number of results (default from config)")
	queryCmd.Flags().Bool("full", false, "return whole notes instead of snippets")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	full, _ := cmd.Flags().GetBool("full")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if !cmd.Flags().Changed("limit") {
		limit = loadedConf.DefaultLimit
	}
	limit = max(limit, 1)

	a, err := openApp(loadedConf, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store.Count() == 0 {
		fmt.Fprintln(os.Stderr, "Index is empty. Run `vaultsearch index` first.")
	}

	if full {
		docs := a.search.Full(ctx, queryText, limit)
		if jsonOutput {
			return printJSON(queryText, docs)
		}
		fmt.Println(search.FormatDocuments(docs))
		return nil
	}

	snippets := a.search.Snippets(ctx, queryText, limit)
	if jsonOutput {
		return printJSON(queryText, snippets)
	}
	fmt.Println(search.FormatSnippets(snippets))
	return nil
}

func printJSON[T any](query string, results []T) error {
	if results == nil {
		results = []T{}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Query   string `json:"query"`
		Results []T    `json:"results"`
	}{query, results})
}
