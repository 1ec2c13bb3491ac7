package config

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
)

// Config is the top-level vaultsearch configuration, corresponding to .vaultsearch.yml.
type Config struct {
	VaultPath      string          `yaml:"vault_path" koanf:"vault_path"`
	DataDir        string          `yaml:"data_dir" koanf:"data_dir"`
	Include        []string        `yaml:"include" koanf:"include"`
	Exclude        []string        `yaml:"exclude" koanf:"exclude"`
	MaxFileSize    int64           `yaml:"max_file_size" koanf:"max_file_size"`
	ChunkSize      int             `yaml:"chunk_size" koanf:"chunk_size"`
	OverlapSize    int             `yaml:"overlap_size" koanf:"overlap_size"`
	Embedding      EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	Workers        int             `yaml:"workers" koanf:"workers"`
	Debounce       string          `yaml:"debounce" koanf:"debounce"`
	DefaultLimit   int             `yaml:"default_limit" koanf:"default_limit"`
	QueryCacheSize int             `yaml:"query_cache_size" koanf:"query_cache_size"`
	Log            LogConfig       `yaml:"log" koanf:"log"`
	HTTP           HTTPConfig      `yaml:"http" koanf:"http"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	BaseURL    string       `yaml:"base_url,omitempty" koanf:"base_url"`
	APIKeyEnv  string       `yaml:"api_key_env,omitempty" koanf:"api_key_env"`
	Dimensions int          `yaml:"dimensions,omitempty" koanf:"dimensions"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
	File   string `yaml:"file,omitempty" koanf:"file"`
}

// HTTPConfig holds settings for the HTTP search API.
type HTTPConfig struct {
	Addr            string `yaml:"addr" koanf:"addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
