package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values, kept as named constants so nothing hides in process-wide
// state.
const (
	DefaultChunkSize     = 500
	DefaultOverlap       = 50
	DefaultTopK          = 3
	DefaultMaxTopK       = 20
	DefaultDimension     = 384
	DefaultExcerptLength = 500
	DefaultSummaryLines  = 3
	DefaultDataDir       = "./data"
	DefaultIndexDir      = "./index"
)

// ChunkingConfig configures how page text is split into chunks. Overlap is a
// pointer so an explicit 0 stays distinguishable from an absent setting.
type ChunkingConfig struct {
	Size    int  `yaml:"size"`
	Overlap *int `yaml:"overlap"`
}

// OpenAIConfig configures the remote embedder.
type OpenAIConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

// EmbedderConfig selects and configures the embedder implementation. For the
// hashing embedder Dimension defaults to DefaultDimension; for openai it is
// left unset so the model's own dimension applies unless overridden.
type EmbedderConfig struct {
	Type      string        `yaml:"type"` // "hashing" or "openai"
	Dimension int           `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
}

// SearchConfig configures query behavior and result display.
type SearchConfig struct {
	TopK          int `yaml:"top_k"`
	MaxTopK       int `yaml:"max_top_k"`
	ExcerptLength int `yaml:"excerpt_length"`
}

// StorageConfig locates the document corpus and the persisted index.
type StorageConfig struct {
	DataDir  string `yaml:"data_dir"`
	IndexDir string `yaml:"index_dir"`
}

// SummaryConfig configures the post-build corpus summary.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	Chunking ChunkingConfig `yaml:"chunking"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Search   SearchConfig   `yaml:"search"`
	Storage  StorageConfig  `yaml:"storage"`
	Summary  SummaryConfig  `yaml:"summary"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then the user config directory.
// If neither exists, defaults are written to the user path and returned.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := userConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func userConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = DefaultChunkSize
	}
	if cfg.Chunking.Overlap == nil {
		overlap := DefaultOverlap
		cfg.Chunking.Overlap = &overlap
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Type == "hashing" && cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = DefaultDimension
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = DefaultTopK
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = DefaultMaxTopK
	}
	if cfg.Search.ExcerptLength == 0 {
		cfg.Search.ExcerptLength = DefaultExcerptLength
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = DefaultIndexDir
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = DefaultSummaryLines
	}
}
