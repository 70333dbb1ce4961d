package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/compliance"
)

func TestSQLiteStore_Compliance(t *testing.T) {
	compliance.RunRepositoryComplianceTest(t, func(t *testing.T, c clock.Clock) compliance.Store {
		store, err := Open(context.Background(), ":memory:", WithClock(c))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)

	u, err := store.CreateUser(ctx, &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	created, err := store.Create(ctx, domain.NewTodo{UserID: u.ID, Title: "persist me", Status: domain.TodoStatusPending})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist me", got.Title)
}

func TestSQLiteStore_RejectsUnknownOwner(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Create(ctx, domain.NewTodo{UserID: "ghost", Title: "orphan", Status: domain.TodoStatusPending})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	early := time.Date(2026, 1, 1, 9, 0, 0, 5, time.UTC)
	late := time.Date(2026, 1, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	assert.Less(t, formatTime(early), formatTime(late))

	parsed, err := parseTime(formatTime(late))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(late))
}
