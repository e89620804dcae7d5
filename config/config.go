// Package config holds all configuration for the ragserve server, loaded from
// a YAML file layered over defaults. Invalid configuration is rejected here,
// at construction time, not when a workflow first trips over it.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds WebSocket server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"` // WebSocket endpoint path
}

// StoreConfig selects and locates the vector store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "snapshot" or "bolt"
	Path    string `yaml:"path"`
}

// ChunkingConfig holds text chunking parameters.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig holds embedding backend configuration.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"`    // "openai" or "mock"
	Model        string `yaml:"model"`
	APIKeyEnv    string `yaml:"api_key_env"` // environment variable for the API key
	BaseURL      string `yaml:"base_url"`    // OpenAI-compatible endpoint, e.g. an Ollama server
	Dimension    int    `yaml:"dimension"`
	SkipDegraded bool   `yaml:"skip_degraded"` // exclude fallback vectors from the index
}

// GenerationConfig holds generation and validation backend configuration.
type GenerationConfig struct {
	Model           string  `yaml:"model"`
	ValidationModel string  `yaml:"validation_model"` // defaults to Model
	APIKeyEnv       string  `yaml:"api_key_env"`
	BaseURL         string  `yaml:"base_url"`
	Temperature     float32 `yaml:"temperature"`
	FetchTimeoutSec int     `yaml:"fetch_timeout_sec"`
}

// RetrievalConfig holds retrieval parameters.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
			Path: "/ws",
		},
		Store: StoreConfig{
			Backend: "snapshot",
			Path:    "vector_db.json",
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
		},
		Generation: GenerationConfig{
			Model:           "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			Temperature:     0.1,
			FetchTimeoutSec: 10,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations that would fail later at runtime.
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	switch c.Store.Backend {
	case "snapshot", "bolt":
	default:
		return fmt.Errorf("unknown store.backend %q (expected snapshot or bolt)", c.Store.Backend)
	}
	switch c.Embedding.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown embedding.provider %q (expected openai or mock)", c.Embedding.Provider)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level string onto a slog level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown logging.level %q", l.Level)
	}
}

// ValidatorModel returns the validation model, falling back to the generation
// model.
func (g GenerationConfig) ValidatorModel() string {
	if g.ValidationModel != "" {
		return g.ValidationModel
	}
	return g.Model
}
