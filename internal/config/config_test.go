package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "APP_ENV", "PORT", "DB_PATH", "SESSION_SECRET",
		"SESSION_BACKEND", "SESSION_TTL", "REDIS_ADDR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./dev.db", cfg.DBPath)
	assert.Equal(t, BackendSQLite, cfg.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsDev())
	assert.Len(t, cfg.Warnings(), 1)
}

func TestLoad_YAMLThenEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
app_env: production
port: "9090"
session_backend: memory
session_ttl: 30m
log_level: debug
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9191")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.Port, "env must override yaml")
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.IsDev())
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"port":    {"PORT": "http"},
		"backend": {"SESSION_BACKEND": "postgres"},
		"ttl":     {"SESSION_TTL": "forever"},
		"neg ttl": {"SESSION_TTL": "-1m"},
		"level":   {"LOG_LEVEL": "loud"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ReadsDotEnvFromWorkingDirectory(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("SESSION_BACKEND=memory\nPORT=7070\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	assert.Equal(t, "7070", cfg.Port)
}
