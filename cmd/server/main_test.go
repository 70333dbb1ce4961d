package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todoreminder/internal/config"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/memory"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/sqlite"
)

type ctxKey string

type recorder struct {
	calls *[]string
	name  string
	err   error
	ctx   context.Context
}

func (r *recorder) Shutdown(ctx context.Context) error {
	r.ctx = ctx
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func (r *recorder) Close() error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestNewCleanup_Order(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey("test"), "marker")
	var calls []string

	server := &recorder{calls: &calls, name: "server"}
	scheduler := &recorder{calls: &calls, name: "scheduler", err: context.DeadlineExceeded}
	redis := &recorder{calls: &calls, name: "redis", err: errors.New("already closed")}
	store := &recorder{calls: &calls, name: "store"}

	newCleanup(ctx, server, scheduler, redis, nil, store)()

	require.Equal(t, []string{"server", "scheduler", "redis", "store"}, calls)
	assert.Equal(t, "marker", scheduler.ctx.Value(ctxKey("test")))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := openStore(ctx, config.StorageConfig{Type: config.StorageMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, s)
		require.NoError(t, s.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := openStore(ctx, config.StorageConfig{
			Type:       config.StorageSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "todos.db"),
		})
		require.NoError(t, err)
		assert.IsType(t, &sqlite.Store{}, s)
		require.NoError(t, s.Close())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := openStore(ctx, config.StorageConfig{Type: "etcd"})
		assert.Error(t, err)
	})
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxxx@db:5432/todos", maskPassword("postgres://app:hunter2@db:5432/todos"))
	assert.Equal(t, "postgres://db:5432/todos", maskPassword("postgres://db:5432/todos"))
	assert.Equal(t, "[REDACTED]", maskPassword("postgres://app:pw@db:bad port/x"))
}
