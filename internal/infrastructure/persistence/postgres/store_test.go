package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/compliance"
)

// openTestStore connects to TODO_TEST_DB_DSN and empties both tables.
// Skips the test when the variable is unset.
func openTestStore(t *testing.T, c clock.Clock) *Store {
	t.Helper()

	dsn := os.Getenv("TODO_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_DB_DSN not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	store, err := Open(ctx, DBConfig{DSN: dsn, MaxOpenConns: 4, MaxIdleConns: 1}, WithClock(c))
	require.NoError(t, err)

	_, err = store.Pool().Exec(ctx, "TRUNCATE todos, users CASCADE")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestPostgresStore_Compliance(t *testing.T) {
	compliance.RunRepositoryComplianceTest(t, func(t *testing.T, c clock.Clock) compliance.Store {
		return openTestStore(t, c)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% done`, escapeLike("100% done"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestBuildOrderBy(t *testing.T) {
	got, err := buildOrderBy(nil)
	require.NoError(t, err)
	assert.Equal(t, "created_at ASC, id ASC", got)

	got, err = buildOrderBy(&domain.QuerySort{Field: domain.FieldRemindAt, Direction: domain.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, "remind_at DESC NULLS LAST, created_at ASC, id ASC", got)

	_, err = buildOrderBy(&domain.QuerySort{Field: "id; DROP TABLE todos"})
	assert.ErrorIs(t, err, domain.ErrInvalidQueryField)
}

func TestBuildWhere(t *testing.T) {
	where, args, err := buildWhere("u1", &domain.QueryFilter{Field: domain.FieldDescription, Contains: "50%"})
	require.NoError(t, err)

	assert.Equal(t, `user_id = $1 AND description ILIKE '%' || $2::text || '%' ESCAPE '\'`, where)
	assert.Equal(t, []any{"u1", `50\%`}, args)

	_, _, err = buildWhere("u1", &domain.QueryFilter{Field: "status", Contains: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidQueryField)
}
