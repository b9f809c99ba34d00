package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.CataloguePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("ONCOCDS_DATA_DIR", "/tmp/test-oncocds")
	os.Setenv("ONCOCDS_CATALOGUE_PATH", "/etc/oncocds/protocols.yaml")
	os.Setenv("ONCOCDS_CACHE_MAX_ITEMS", "500")
	os.Setenv("ONCOCDS_CACHE_TTL", "1m")
	os.Setenv("ONCOCDS_LOG_LEVEL", "debug")
	os.Setenv("ONCOCDS_LOG_FORMAT", "text")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-oncocds", cfg.DataDir)
	assert.Equal(t, "/etc/oncocds/protocols.yaml", cfg.CataloguePath)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadLiteConfig_IgnoresInvalidValues(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("ONCOCDS_CACHE_MAX_ITEMS", "-3")
	os.Setenv("ONCOCDS_CACHE_TTL", "soon")
	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLiteConfig_FeedbackDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.oncocds"}

	assert.Equal(t, "/home/user/.oncocds/feedback.db", cfg.FeedbackDBPath())
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.oncocds"}

	assert.Equal(t, "/home/user/.oncocds/exports", cfg.ExportDir())
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "oncocds")}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"ONCOCDS_DATA_DIR",
		"ONCOCDS_CATALOGUE_PATH",
		"ONCOCDS_CACHE_MAX_ITEMS",
		"ONCOCDS_CACHE_TTL",
		"ONCOCDS_LOG_LEVEL",
		"ONCOCDS_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
