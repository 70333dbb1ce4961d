package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot
// leak in. Set-but-empty would override env-default, so they are unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TODO_ENV", "TODO_SHUTDOWN_TIMEOUT",
		"TODO_HTTP_HOST", "TODO_HTTP_PORT", "TODO_HTTP_READ_TIMEOUT", "TODO_HTTP_WRITE_TIMEOUT",
		"TODO_HTTP_IDLE_TIMEOUT", "TODO_HTTP_READ_HEADER_TIMEOUT", "TODO_HTTP_MAX_HEADER_BYTES", "TODO_HTTP_MAX_BODY_BYTES",
		"TODO_STORAGE_TYPE", "TODO_SQLITE_PATH", "TODO_DB_DSN", "TODO_DB_MAX_OPEN_CONNS", "TODO_DB_MAX_IDLE_CONNS",
		"TODO_DB_CONN_MAX_LIFETIME", "TODO_DB_CONN_MAX_IDLE_TIME",
		"TODO_REDIS_ADDR", "TODO_REDIS_PASSWORD", "TODO_REDIS_DB", "TODO_CACHE_TTL",
		"TODO_JWT_SECRET", "TODO_JWT_TTL", "TODO_JWT_REFRESH_SECRET", "TODO_JWT_REFRESH_TTL",
		"TODO_REMINDER_INTERVAL", "TODO_WORKER_OPERATION_TIMEOUT",
		"TODO_OTEL_ENABLED", "OTEL_SERVICE_NAME", "TODO_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 60*time.Second, cfg.Worker.ReminderInterval.Std())
	assert.Equal(t, 30*time.Second, cfg.Worker.OperationTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL.Std())
	assert.Equal(t, 30*time.Minute, cfg.Auth.JWTTTL.Std())
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTRefreshTTL.Std())
	assert.Empty(t, cfg.Auth.JWTRefreshSecret)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout.Std())
	assert.False(t, cfg.Cache.Enabled())
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoad_WithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_ENV", "prod")
	t.Setenv("TODO_HTTP_PORT", "9000")
	t.Setenv("TODO_STORAGE_TYPE", "postgres")
	t.Setenv("TODO_DB_DSN", "postgres://prod:secret@db:5432/todos")
	t.Setenv("TODO_DB_MAX_OPEN_CONNS", "50")
	t.Setenv("TODO_REDIS_ADDR", "redis:6379")
	t.Setenv("TODO_JWT_SECRET", "s3cret")
	t.Setenv("TODO_REMINDER_INTERVAL", "5m")
	t.Setenv("TODO_WORKER_OPERATION_TIMEOUT", "10")
	t.Setenv("TODO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "postgres://prod:secret@db:5432/todos", cfg.Storage.Database.DSN)
	assert.Equal(t, 50, cfg.Storage.Database.MaxOpenConns)
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.Worker.ReminderInterval.Std())
	assert.Equal(t, 10*time.Second, cfg.Worker.OperationTimeout.Std(), "bare numbers are seconds")

	level, err := cfg.Observability.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without dsn", map[string]string{"TODO_STORAGE_TYPE": "postgres"}, "TODO_DB_DSN is required"},
		{"unknown storage", map[string]string{"TODO_STORAGE_TYPE": "mysql"}, "unsupported TODO_STORAGE_TYPE"},
		{"dev secret in prod", map[string]string{"TODO_ENV": "prod"}, "TODO_JWT_SECRET must be set in prod"},
		{"dev refresh secret in prod", map[string]string{
			"TODO_ENV":                "prod",
			"TODO_JWT_SECRET":         "s3cret",
			"TODO_JWT_REFRESH_SECRET": "dev-only-insecure-secret",
		}, "TODO_JWT_REFRESH_SECRET must not be the development secret"},
		{"bad log level", map[string]string{"TODO_LOG_LEVEL": "loud"}, "invalid TODO_LOG_LEVEL"},
		{"bad duration", map[string]string{"TODO_REMINDER_INTERVAL": "soon"}, "duration must be like"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"10", 10 * time.Second},
		{"1m30s", 90 * time.Second},
		{`"45s"`, 45 * time.Second},
		{" 2h ", 2 * time.Hour},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseDuration("")
	assert.Error(t, err)
}

func TestUsage_ListsVariables(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf)
	assert.Contains(t, buf.String(), "TODO_STORAGE_TYPE")
	assert.Contains(t, buf.String(), "TODO_REMINDER_INTERVAL")
}
