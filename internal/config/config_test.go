package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "sql", cfg.ResultsDriver)
	assert.Equal(t, 70.0, cfg.DefaultPassingScore)
	assert.Equal(t, 10*time.Minute, cfg.BankCacheTTL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "examd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
results_driver: mongo
mongo_db: dumps
bank_cache_ttl: 2m
cors_origins: ["https://shop.example.com"]
default_passing_score: 65
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr, "env wins over file")
	assert.Equal(t, "mongo", cfg.ResultsDriver)
	assert.Equal(t, "dumps", cfg.MongoDB)
	assert.Equal(t, 2*time.Minute, cfg.BankCacheTTL)
	assert.Equal(t, 65.0, cfg.DefaultPassingScore)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	for k, v := range map[string]string{
		"DB_DRIVER":             "oracle",
		"RESULTS_DRIVER":        "s3",
		"DEFAULT_PASSING_SCORE": "150",
		"LOG_LEVEL":             "loud",
	} {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
