package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/drugref/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("SERVE", "yes")
	t.Setenv("DEBUG", "0")

	cfg := config.Default()
	config.LoadFromEnv(cfg)

	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 60, cfg.CacheTTL)
	assert.Equal(t, 9090, cfg.Port, "invalid numbers keep the default")
	assert.True(t, cfg.Serve)
	assert.False(t, cfg.Debug)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drugref.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /srv/inputs
pubmed_json: ""
storage_type: sqlite
cache_type: redis
redis_port: 6380
`), 0644))

	cfg := config.Default()
	require.NoError(t, config.LoadFromFile(path, cfg))

	assert.Equal(t, "/srv/inputs", cfg.DataDir)
	assert.Equal(t, "", cfg.PubmedJSON)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "redis", cfg.CacheType)
	assert.Equal(t, 6380, cfg.RedisPort)
	// untouched keys keep defaults
	assert.Equal(t, "drugs.csv", cfg.DrugsFile)
	assert.Equal(t, "localhost", cfg.RedisHost)
}

func TestLoadFromFile_Errors(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"), cfg))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [1, 2"), 0644))
	assert.Error(t, config.LoadFromFile(path, cfg))
}

func TestInputPath(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "inputs"

	assert.Equal(t, filepath.Join("inputs", "drugs.csv"), cfg.InputPath("drugs.csv"))
	assert.Equal(t, "/abs/drugs.csv", cfg.InputPath("/abs/drugs.csv"))
	assert.Equal(t, "", cfg.InputPath(""))
}
