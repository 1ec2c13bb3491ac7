package config

import (
	"github.com/ziadkadry99/vaultsearch/internal/embeddings"
	"github.com/ziadkadry99/vaultsearch/internal/indexer"
	"github.com/ziadkadry99/vaultsearch/internal/walker"
)

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = ".vaultsearch.yml"

// DataDirName is the data directory created inside the vault when data_dir
// is not set. The walker never descends into it.
const DataDirName = ".vaultsearch"

// defaultModels maps each provider to its default embedding model.
var defaultModels = map[ProviderType]string{
	ProviderOllama: "nomic-embed-text",
	ProviderOpenAI: string(embeddings.ModelTextEmbedding3Small),
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Include:     append([]string(nil), walker.DefaultIncludes...),
		MaxFileSize: walker.DefaultMaxFileSize,
		ChunkSize:   indexer.DefaultChunkSize,
		OverlapSize: indexer.DefaultOverlapSize,
		Embedding: EmbeddingConfig{
			Provider: ProviderOllama,
			Model:    defaultModels[ProviderOllama],
		},
		Workers:        4,
		Debounce:       "500ms",
		DefaultLimit:   10,
		QueryCacheSize: embeddings.DefaultCacheSize,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8765",
		},
	}
}

// DefaultModel returns the default embedding model for provider.
func DefaultModel(provider ProviderType) string {
	return defaultModels[provider]
}
