package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/vaultsearch/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing the
search_snippets and search_full tools. Unless --no-watch is given, the vault
is synced and watched in the background while the server runs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("no-watch", false, "serve the existing index without syncing or watching the vault")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	noWatch, _ := cmd.Flags().GetBool("no-watch")

	a, err := openApp(loadedConf, !noWatch)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !noWatch {
		go func() {
			// stdout carries the MCP protocol; progress goes to the log only.
			if err := a.syncAndWatch(ctx, nil); err != nil {
				logger.Error("background sync stopped", "err", err)
			}
		}()
	}

	mcpserver.Version = Version
	fmt.Fprintf(os.Stderr, "vaultsearch MCP server started on stdio (vault=%s, chunks=%d)\n",
		a.vault.Root(), a.store.Count())

	srv := mcpserver.NewServer(a.search, loadedConf.DefaultLimit, logger)
	return srv.Serve()
}
