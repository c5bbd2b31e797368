package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.REST.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "default", cfg.Storage.Profile)
	assert.Equal(t, "/static/", cfg.Content.URLPrefix)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[rest]
port = "9090"
read_timeout = "5s"

[upstream]
base_url = "https://kb.example.com/api"

[rate_limiter]
limit = 3
enabled = true

[markdown]
style = "monokai"
classes = true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.REST.Port)
	assert.Equal(t, 5*time.Second, cfg.REST.ReadTimeout)
	assert.Equal(t, "https://kb.example.com/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 3, cfg.RateLimiter.Limit)
	assert.True(t, cfg.RateLimiter.Enabled)
	assert.Equal(t, "monokai", cfg.Markdown.Style)
	assert.True(t, cfg.Markdown.Classes)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("KBPANEL_REST_PORT", "7070")
	t.Setenv("KBPANEL_STORAGE_PROFILE", "staging")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.REST.Port)
	assert.Equal(t, "staging", cfg.Storage.Profile)
}

func TestLoadConfigEnvOverrideWithoutFile(t *testing.T) {
	t.Setenv("KBPANEL_STORAGE_DRIVER", "postgres")
	t.Setenv("KBPANEL_DB_HOST", "db.internal")
	t.Setenv("KBPANEL_DB_PORT", "6432")
	t.Setenv("KBPANEL_DB_USER", "kb")
	t.Setenv("KBPANEL_DB_PASSWORD", "secret")
	t.Setenv("KBPANEL_DB_NAME", "kbpanel")
	t.Setenv("KBPANEL_DB_MAX_IDLE_CONNS", "2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, DBConf{
		User:         "kb",
		Password:     "secret",
		Name:         "kbpanel",
		Host:         "db.internal",
		Port:         "6432",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		MaxIdleTime:  15 * time.Minute,
	}, cfg.DB)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
[storage]
driver = "redis"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed reading config")
}
