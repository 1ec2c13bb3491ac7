package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ziadkadry99/vaultsearch/internal/config"
	"github.com/ziadkadry99/vaultsearch/internal/datadir"
	"github.com/ziadkadry99/vaultsearch/internal/embeddings"
	"github.com/ziadkadry99/vaultsearch/internal/indexer"
	"github.com/ziadkadry99/vaultsearch/internal/progress"
	"github.com/ziadkadry99/vaultsearch/internal/search"
	"github.com/ziadkadry99/vaultsearch/internal/server"
	"github.com/ziadkadry99/vaultsearch/internal/vectordb"
	"github.com/ziadkadry99/vaultsearch/internal/walker"
	"github.com/ziadkadry99/vaultsearch/internal/watcher"
)

// createEmbedderFromConfig creates an embeddings.Embedder based on config,
// wrapped in a query cache when query_cache_size is positive.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	var embedder embeddings.Embedder
	model := cfg.EmbeddingModel()

	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		apiKey := cfg.APIKey()
		if apiKey == "" {
			name := cfg.Embedding.APIKeyEnv
			if name == "" {
				name = config.APIKeyEnvVar(config.ProviderOpenAI)
			}
			return nil, fmt.Errorf("%s environment variable is required for OpenAI embeddings", name)
		}
		embedder = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model), cfg.Embedding.BaseURL)
	case config.ProviderOllama:
		embedder = embeddings.NewOllamaEmbedder(model, cfg.Embedding.Dimensions, cfg.Embedding.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Embedding.Provider)
	}

	if cfg.QueryCacheSize > 0 {
		embedder = embeddings.NewCachedEmbedder(embedder, cfg.QueryCacheSize)
	}
	return embedder, nil
}

// loadConfig loads the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `vaultsearch init` to create a config file", err)
	}
	return cfg, nil
}

// app is everything a command needs to index or search one vault.
type app struct {
	cfg     *config.Config
	vault   *walker.Vault
	dir     datadir.Dir
	store   *vectordb.ChromemStore
	state   *indexer.StateStore
	engine  *indexer.Engine
	search  *search.Service
	lock    *datadir.Lock
	workers int
}

// openApp validates the config, resolves the vault and opens the index and
// sync state. Writers take the data directory lock first.
func openApp(cfg *config.Config, writer bool) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	home, _ := os.UserHomeDir()
	root, err := cfg.ResolveVault(home, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("locating vault: %w\nSet vault_path in %s or %s", err, cfgFile, config.VaultEnvVar)
	}
	vault, err := walker.NewVault(walker.Options{
		Root:        root,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		MaxFileSize: cfg.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		vault:   vault,
		dir:     datadir.New(cfg.ResolveDataDir(vault.Root())),
		workers: cfg.Workers,
	}

	if writer {
		if a.lock, err = a.dir.Lock(); err != nil {
			return nil, err
		}
	} else if err := a.dir.Ensure(); err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	if a.store, err = vectordb.OpenChromemStore(a.dir.IndexDir(), embedder); err != nil {
		a.Close()
		return nil, err
	}
	if a.state, err = indexer.LoadStateStore(a.dir.StatePath()); err != nil {
		a.Close()
		return nil, err
	}
	chunker, err := indexer.NewChunker(cfg.ChunkSize, cfg.OverlapSize)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.engine = indexer.NewEngine(chunker, a.state, a.store,
		indexer.WithLogger(logger),
		indexer.WithWorkers(cfg.Workers))
	a.search = search.NewService(a.store, logger)

	logger.Debug("vault opened",
		"vault", vault.Root(),
		"data_dir", a.dir.Root(),
		"tracked", a.state.Len(),
		"chunks", a.store.Count())
	return a, nil
}

// Close releases the writer lock, if held.
func (a *app) Close() {
	if err := a.lock.Release(); err != nil {
		logger.Warn("releasing data dir lock", "err", err)
	}
}

// reset drops every chunk and every stored fingerprint.
func (a *app) reset() error {
	if err := a.store.Reset(); err != nil {
		return err
	}
	a.state.Reset()
	return a.state.Persist()
}

// scan walks the vault and syncs every eligible note.
func (a *app) scan(ctx context.Context, reporter progress.Reporter) (indexer.ScanReport, error) {
	files, err := a.vault.Walk()
	if err != nil {
		return indexer.ScanReport{}, err
	}
	fileSources := a.vault.Sources(files)
	sources := make([]indexer.Source, len(fileSources))
	for i, s := range fileSources {
		sources[i] = s
	}

	var onProgress indexer.ProgressFunc
	if reporter != nil {
		reporter.Start(len(sources))
		onProgress = progress.Func(reporter)
		defer reporter.Finish()
	}
	return a.engine.FullScan(ctx, sources, onProgress), nil
}

// watch applies vault changes to the index until ctx is done.
func (a *app) watch(ctx context.Context) error {
	debounce, _ := a.cfg.DebounceDuration()
	w, err := watcher.New(a.vault, watcher.Options{Debounce: debounce, Logger: logger})
	if err != nil {
		return err
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Run(ctx) }()

	dispatcher := indexer.NewDispatcher(a.engine, a.workers, logger)
	dispatcher.OnResult(func(c indexer.Change, outcome indexer.Outcome, err error) {
		if err != nil {
			logger.Error("change failed", "doc", c.DocumentID, "kind", c.Kind.String(), "err", err)
		}
	})
	changes := watcher.Bridge(ctx, w.Events(), a.vault, a.state.Snapshot)
	runErr := dispatcher.Run(ctx, changes)

	if err := <-watchErr; err != nil {
		return err
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// syncAndWatch runs a full scan and then watches the vault.
func (a *app) syncAndWatch(ctx context.Context, reporter progress.Reporter) error {
	report, err := a.scan(ctx, reporter)
	if err != nil {
		return err
	}
	for _, e := range report.Errors {
		logger.Warn("initial sync failure", "err", e)
	}
	if ctx.Err() != nil {
		return nil
	}
	return a.watch(ctx)
}

func (a *app) status() server.Status {
	return server.Status{
		VaultPath:        a.vault.Root(),
		TrackedDocuments: a.state.Len(),
		Chunks:           a.store.Count(),
	}
}
