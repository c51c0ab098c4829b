package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "embedded", cfg.Catalog.Driver)
	assert.Equal(t, 10, cfg.Recommend.MonthlyFrequency)
	assert.Equal(t, 0.4, cfg.Recommend.AffordableShare)
	assert.Equal(t, 1000, cfg.Recommend.MaxCombinations)
	assert.Equal(t, 10*time.Minute, cfg.Recommend.FastCacheTTL)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	require.NoError(t, validateConfig(cfg))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = 0 }},
		{"missing corpus", func(c *Config) { c.Corpus.URL, c.Corpus.File = "", "" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"sqlite without dsn", func(c *Config) { c.Catalog.Driver = "sqlite" }},
		{"unknown driver", func(c *Config) { c.Catalog.Driver = "mysql" }},
		{"share above one", func(c *Config) { c.Recommend.AffordableShare = 1.5 }},
		{"no workers", func(c *Config) { c.Queue.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}

	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.Backend = "anything"
	assert.NoError(t, validateConfig(cfg))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CORPUS_URL", "http://example.com/recipes.csv")
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("APP_RECOMMEND_MONTHLY_FREQUENCY", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/recipes.csv", cfg.Corpus.URL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 12, cfg.Recommend.MonthlyFrequency)
}
