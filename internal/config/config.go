package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	vserrors "github.com/ziadkadry99/vaultsearch/internal/errors"
)

// EnvPrefix marks environment variable overrides. A double underscore
// selects a nested key: VAULTSEARCH_EMBEDDING__MODEL -> embedding.model.
const EnvPrefix = "VAULTSEARCH_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (VAULTSEARCH_*). A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// VAULTSEARCH_CHUNK_SIZE -> chunk_size, VAULTSEARCH_LOG__LEVEL -> log.level.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOllama: true,
	ProviderOpenAI: true,
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	const op = "config.validate"

	if c.ChunkSize < utf8.UTFMax {
		return vserrors.Invalid(op, "chunk_size must be at least %d, got %d", utf8.UTFMax, c.ChunkSize)
	}
	if c.OverlapSize < 0 || c.OverlapSize >= c.ChunkSize {
		return vserrors.Invalid(op, "overlap_size must be in [0, chunk_size), got %d", c.OverlapSize)
	}
	if !validProviders[c.Embedding.Provider] {
		return vserrors.Invalid(op, "invalid embedding.provider %q: must be one of ollama, openai", c.Embedding.Provider)
	}
	if c.Workers < 1 {
		return vserrors.Invalid(op, "workers must be positive, got %d", c.Workers)
	}
	if c.DefaultLimit < 1 {
		return vserrors.Invalid(op, "default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.QueryCacheSize < 0 {
		return vserrors.Invalid(op, "query_cache_size must be non-negative")
	}
	if c.MaxFileSize < 0 {
		return vserrors.Invalid(op, "max_file_size must be non-negative")
	}
	if _, err := c.DebounceDuration(); err != nil {
		return vserrors.Invalid(op, "invalid debounce %q: %v", c.Debounce, err)
	}
	if c.Log.Level != "" && !validLogLevels[strings.ToLower(c.Log.Level)] {
		return vserrors.Invalid(op, "invalid log.level %q", c.Log.Level)
	}
	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		return vserrors.Invalid(op, "invalid log.format %q: must be text or json", f)
	}
	return nil
}

// DebounceDuration parses Debounce. An empty value means zero, which
// callers treat as the watcher default.
func (c *Config) DebounceDuration() (time.Duration, error) {
	if c.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration")
	}
	return d, nil
}

// EmbeddingModel returns the configured model or the provider default.
func (c *Config) EmbeddingModel() string {
	if c.Embedding.Model != "" {
		return c.Embedding.Model
	}
	return DefaultModel(c.Embedding.Provider)
}

// APIKey reads the embedding provider's API key from the environment.
func (c *Config) APIKey() string {
	name := c.Embedding.APIKeyEnv
	if name == "" {
		name = APIKeyEnvVar(c.Embedding.Provider)
	}
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// ResolveDataDir returns the data directory for vault: data_dir when set,
// otherwise DataDirName inside the vault.
func (c *Config) ResolveDataDir(vault string) string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(vault, DataDirName)
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
