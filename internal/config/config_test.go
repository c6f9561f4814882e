package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "DATABASE_URL", "STORE", "REDIS_URL",
	"IDEMPOTENCY_TTL", "SWEEP_INTERVAL", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "DEBUG",
	"BOARD_API_URL", "BOARD_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.Debug)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeFile(t, `
port: "9090"
store: memory
redis_url: redis://localhost:6379/0
idempotency_ttl: 1h
debug: true
`))
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "env wins over file")
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.True(t, cfg.Debug)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "unknown store", env: map[string]string{"STORE": "sqlite"}},
		{name: "bad duration", env: map[string]string{"IDEMPOTENCY_TTL": "tomorrow"}},
		{name: "non-positive ttl", env: map[string]string{"IDEMPOTENCY_TTL": "-1s"}},
		{name: "zero sweep interval", env: map[string]string{"SWEEP_INTERVAL": "0s"}},
		{name: "bad debug", env: map[string]string{"DEBUG": "maybe"}},
		{name: "broken yaml", file: "port: [1, 2"},
		{name: "missing file", env: map[string]string{"CONFIG_FILE": "/nonexistent/board.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.file != "" {
				t.Setenv("CONFIG_FILE", writeFile(t, tt.file))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadClient(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	t.Setenv("BOARD_API_URL", "http://board.internal:9000")
	t.Setenv("BOARD_TIMEOUT", "3s")

	cfg, err = LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://board.internal:9000", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}
