package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "Vendas Simulação.xlsx", cfg.Data.Source)
	assert.Equal(t, "Vendas", cfg.Data.Sheet)
	assert.Equal(t, time.Hour, cfg.Data.CacheTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG", "")
	t.Setenv("SALESDASH_SERVER_PORT", "9090")
	t.Setenv("SALESDASH_DATA_SOURCE", "/data/vendas.csv")
	t.Setenv("SALESDASH_DATA_CACHE_TTL", "5m")
	t.Setenv("SALESDASH_SERVER_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/vendas.csv", cfg.Data.Source)
	assert.Equal(t, 5*time.Minute, cfg.Data.CacheTTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salesdash.yaml")
	yaml := `
server:
  port: 7000
  rate_limit: 5
data:
  source: from-file.xlsx
  cache_ttl: 30s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv(EnvPrefix+"_CONFIG", path)
	t.Setenv("SALESDASH_DATA_SOURCE", "from-env.xlsx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, "from-env.xlsx", cfg.Data.Source, "environment wins over the file")
	assert.Equal(t, 30*time.Second, cfg.Data.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "Vendas", cfg.Data.Sheet, "unset file values keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG", "")

	t.Setenv("SALESDASH_SERVER_PORT", "70000")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid port")

	t.Setenv("SALESDASH_SERVER_PORT", "8080")
	t.Setenv("SALESDASH_DATA_CACHE_TTL", "-1s")
	_, err = Load()
	assert.ErrorContains(t, err, "negative cache ttl")
}

func TestLoadFileExplicitZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salesdash.yaml")
	yaml := `
server:
  rate_limit: 0
data:
  cache_ttl: 0s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv(EnvPrefix+"_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Server.RateLimit, "an explicit zero in the file disables rate limiting")
	assert.Zero(t, cfg.Data.CacheTTL, "an explicit zero in the file disables caching")
	assert.Equal(t, 8080, cfg.Server.Port, "absent keys keep defaults")
}
