package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears variables for the test duration, restoring them afterwards.
func unset(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

var allVars = []string{
	"SBK_LOG_LEVEL", "SBK_STORE", "SBK_DB_PATH", "SBK_FILE_PATH",
	"YAHOO_CHART_URL", "YAHOO_PAGE_URL", "YAHOO_TIMEOUT", "YAHOO_RATE", "YAHOO_CACHE_DIR", "YAHOO_DEBUG", "YAHOO_FETCH_TIMEOUT",
}

func TestLoad_Defaults(t *testing.T) {
	unset(t, allVars...)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "stocks.db", cfg.DBPath)
	assert.Equal(t, "stocks.jsonl", cfg.FilePath)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Yahoo.ChartURL)
	assert.Equal(t, 30*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Yahoo.FetchTimeout)
	assert.Equal(t, 30, cfg.Yahoo.Rate)
	assert.Empty(t, cfg.Yahoo.CacheDir)
	assert.False(t, cfg.Yahoo.Debug)
}

func TestLoad_Environment(t *testing.T) {
	unset(t, allVars...)
	t.Setenv("SBK_STORE", "file")
	t.Setenv("YAHOO_TIMEOUT", "5s")
	t.Setenv("YAHOO_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.Yahoo.Timeout)
	assert.True(t, cfg.Yahoo.Debug)
}

func TestLoad_DotEnv(t *testing.T) {
	unset(t, allVars...)
	t.Setenv("SBK_DB_PATH", "from-env.db")

	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("SBK_DB_PATH=from-file.db\nYAHOO_RATE=12\n"), 0o644))

	cfg, err := Load(dotenv)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DBPath, "environment wins over .env")
	assert.Equal(t, 12, cfg.Yahoo.Rate)
}

func TestLoad_Invalid(t *testing.T) {
	unset(t, allVars...)
	t.Setenv("SBK_STORE", "postgres")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	t.Setenv("SBK_STORE", "sqlite")
	t.Setenv("YAHOO_RATE", "fast")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
