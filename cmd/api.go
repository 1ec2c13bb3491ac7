package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/vaultsearch/internal/server"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP search API",
	Long: `Starts a JSON HTTP API exposing snippet search, full document search and
index status. Unless --no-watch is given, the vault is synced and watched
while the server runs.`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().String("addr", "", "listen address (default from config)")
	apiCmd.Flags().Bool("no-watch", false, "serve the existing index without syncing or watching the vault")
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	noWatch, _ := cmd.Flags().GetBool("no-watch")
	if addr == "" {
		addr = loadedConf.HTTP.Addr
	}

	a, err := openApp(loadedConf, !noWatch)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:         addr,
		AllowAll:     loadedConf.HTTP.AllowAllOrigins,
		DefaultLimit: loadedConf.DefaultLimit,
	}, a.search, a.status, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "vaultsearch API listening on http://%s\n", addr)
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if !noWatch {
		g.Go(func() error {
			if err := a.syncAndWatch(gctx, nil); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background sync stopped", "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}
