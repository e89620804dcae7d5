package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragserve.yaml")
	content := `
server:
  addr: ":9999"
store:
  backend: bolt
  path: segments.db
chunking:
  size: 500
  overlap: 50
embedding:
  provider: mock
  dimension: 64
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "bolt", cfg.Store.Backend)
	assert.Equal(t, "segments.db", cfg.Store.Path)
	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, "mock", cfg.Embedding.Provider)
	assert.Equal(t, 64, cfg.Embedding.Dimension)

	// Untouched sections keep their defaults.
	assert.Equal(t, "/ws", cfg.Server.Path)
	assert.Equal(t, 5, cfg.Retrieval.TopK)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Chunking.Size = 0 }},
		{"overlap equals size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"unknown store backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"unknown embedding provider", func(c *Config) { c.Embedding.Provider = "word2vec" }},
		{"non-positive top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidatorModelFallsBackToGenerationModel(t *testing.T) {
	g := GenerationConfig{Model: "gpt-4o-mini"}
	assert.Equal(t, "gpt-4o-mini", g.ValidatorModel())

	g.ValidationModel = "gpt-4o"
	assert.Equal(t, "gpt-4o", g.ValidatorModel())
}
