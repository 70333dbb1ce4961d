// Package compliance holds the behavioral test suite every repository
// implementation must pass.
package compliance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todoreminder/internal/application/todo"
	"github.com/rezkam/todoreminder/internal/application/user"
	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/ptr"
)

// Store is the full repository surface under test.
type Store interface {
	todo.Repository
	user.Repository
}

// Epoch is the instant the suite's fake clock starts at.
var Epoch = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

// RunRepositoryComplianceTest runs the standard repository tests.
// setup must return an empty store that stamps times from c; cleanup should
// be registered with t.Cleanup.
func RunRepositoryComplianceTest(t *testing.T, setup func(t *testing.T, c clock.Clock) Store) {
	newStore := func(t *testing.T) (Store, *clock.Fake) {
		fc := clock.NewFake(Epoch)
		return setup(t, fc), fc
	}

	t.Run("CreateAndFindTodo", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")

		remindAt := Epoch.Add(time.Hour)
		created, err := store.Create(ctx, domain.NewTodo{
			UserID:      owner.ID,
			Title:       "Buy milk",
			Description: ptr.To("2 litres"),
			Status:      domain.TodoStatusPending,
			RemindAt:    &remindAt,
		})
		require.NoError(t, err)

		_, err = uuid.Parse(created.ID)
		assert.NoError(t, err, "id should be a UUID")
		assert.True(t, created.CreatedAt.Equal(Epoch))
		assert.True(t, created.UpdatedAt.Equal(created.CreatedAt))

		fetched, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, owner.ID, fetched.UserID)
		assert.Equal(t, "Buy milk", fetched.Title)
		require.NotNil(t, fetched.Description)
		assert.Equal(t, "2 litres", *fetched.Description)
		assert.Equal(t, domain.TodoStatusPending, fetched.Status)
		require.NotNil(t, fetched.RemindAt)
		assert.True(t, fetched.RemindAt.Equal(remindAt))
	})

	t.Run("OptionalFieldsStayNil", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")

		created := createTodo(t, store, owner.ID, "plain", nil)

		fetched, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, fetched.Description)
		assert.Nil(t, fetched.RemindAt)
	})

	t.Run("FindMissingTodo", func(t *testing.T) {
		store, _ := newStore(t)

		_, err := store.FindByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)

		_, err = store.FindByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	})

	t.Run("UpdateBumpsUpdatedAtOnFrozenClock", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		created := createTodo(t, store, owner.ID, "a", nil)

		first, err := store.Update(ctx, created.ID, domain.TodoPatch{Status: ptr.To(domain.TodoStatusReminderDue)})
		require.NoError(t, err)
		assert.Equal(t, domain.TodoStatusReminderDue, first.Status)
		assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
		assert.True(t, first.CreatedAt.Equal(created.CreatedAt))
		assert.Equal(t, "a", first.Title)

		second, err := store.Update(ctx, created.ID, domain.TodoPatch{Status: ptr.To(domain.TodoStatusDone)})
		require.NoError(t, err)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

		fetched, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TodoStatusDone, fetched.Status)
		assert.True(t, fetched.UpdatedAt.Equal(second.UpdatedAt))
	})

	t.Run("UpdateUsesClock", func(t *testing.T) {
		store, fc := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		created := createTodo(t, store, owner.ID, "a", nil)

		fc.Advance(time.Minute)
		updated, err := store.Update(ctx, created.ID, domain.TodoPatch{Title: ptr.To("b")})
		require.NoError(t, err)

		assert.Equal(t, "b", updated.Title)
		assert.True(t, updated.UpdatedAt.Equal(Epoch.Add(time.Minute)))
	})

	t.Run("UpdateMissingTodo", func(t *testing.T) {
		store, _ := newStore(t)

		_, err := store.Update(context.Background(), uuid.NewString(), domain.TodoPatch{Status: ptr.To(domain.TodoStatusDone)})
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	})

	t.Run("ConditionalUpdate", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		created := createTodo(t, store, owner.ID, "a", nil)

		done, err := store.Update(ctx, created.ID, domain.TodoPatch{Status: ptr.To(domain.TodoStatusDone)})
		require.NoError(t, err)

		_, err = store.Update(ctx, created.ID, domain.TodoPatch{
			Status:   ptr.To(domain.TodoStatusReminderDue),
			IfStatus: ptr.To(domain.TodoStatusPending),
		})
		assert.ErrorIs(t, err, domain.ErrStatusChanged)

		fetched, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TodoStatusDone, fetched.Status)
		assert.True(t, fetched.UpdatedAt.Equal(done.UpdatedAt))

		_, err = store.Update(ctx, created.ID, domain.TodoPatch{
			Title:    ptr.To("renamed"),
			IfStatus: ptr.To(domain.TodoStatusDone),
		})
		assert.NoError(t, err)
	})

	t.Run("PaginationAndTotalCount", func(t *testing.T) {
		store, fc := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		for i := range 5 {
			createTodo(t, store, owner.ID, fmt.Sprintf("todo-%d", i), nil)
			fc.Advance(time.Second)
		}

		page, err := store.FindByUserID(ctx, owner.ID, domain.TodoQuery{Skip: 2, Take: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Count)
		assert.Equal(t, []string{"todo-2", "todo-3"}, titles(page))

		page, err = store.FindByUserID(ctx, owner.ID, domain.TodoQuery{Skip: 4, Take: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Count)
		assert.Equal(t, []string{"todo-4"}, titles(page))

		page, err = store.FindByUserID(ctx, owner.ID, domain.TodoQuery{Skip: 10, Take: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Count)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})

	t.Run("ListIsScopedToUser", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		alice := createUser(t, store, "alice@example.com")
		bob := createUser(t, store, "bob@example.com")
		createTodo(t, store, alice.ID, "alice's", nil)
		createTodo(t, store, bob.ID, "bob's", nil)

		page, err := store.FindByUserID(ctx, alice.ID, domain.TodoQuery{Take: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Count)
		assert.Equal(t, []string{"alice's"}, titles(page))

		page, err = store.FindByUserID(ctx, uuid.NewString(), domain.TodoQuery{Take: 10})
		require.NoError(t, err)
		assert.Zero(t, page.Count)
		assert.Empty(t, page.Data)
	})

	t.Run("FilterIsCaseInsensitiveContains", func(t *testing.T) {
		store, fc := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		for _, title := range []string{"Buy MILK", "walk dog", "milkshake", "100% done", "1000 done"} {
			createTodo(t, store, owner.ID, title, nil)
			fc.Advance(time.Second)
		}

		page, err := store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take:   10,
			Filter: &domain.QueryFilter{Field: domain.FieldTitle, Contains: "milk"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Count)
		assert.Equal(t, []string{"Buy MILK", "milkshake"}, titles(page))

		page, err = store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take:   10,
			Filter: &domain.QueryFilter{Field: domain.FieldTitle, Contains: "0%"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"100% done"}, titles(page), "wildcards are matched literally")

		page, err = store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take:   1,
			Filter: &domain.QueryFilter{Field: domain.FieldTitle, Contains: "DONE"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Count, "count covers the filter, not the page")
		assert.Len(t, page.Data, 1)
	})

	t.Run("FilterFoldsNonASCII", func(t *testing.T) {
		store, fc := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		for _, title := range []string{"ÄRGER melden", "Straße fegen", "Ärmel nähen"} {
			createTodo(t, store, owner.ID, title, nil)
			fc.Advance(time.Second)
		}

		page, err := store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take:   10,
			Filter: &domain.QueryFilter{Field: domain.FieldTitle, Contains: "ärger"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Count)
		assert.Equal(t, []string{"ÄRGER melden"}, titles(page))

		page, err = store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take:   10,
			Filter: &domain.QueryFilter{Field: domain.FieldTitle, Contains: "ÄR"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"ÄRGER melden", "Ärmel nähen"}, titles(page))
	})

	t.Run("RejectsInvalidPaging", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		createTodo(t, store, owner.ID, "only", nil)

		for _, q := range []domain.TodoQuery{
			{Skip: -1, Take: 10},
			{Skip: 0, Take: 0},
			{Skip: 0, Take: -3},
		} {
			_, err := store.FindByUserID(ctx, owner.ID, q)
			assert.ErrorIs(t, err, domain.ErrInvalidPagination, "skip=%d take=%d", q.Skip, q.Take)
		}
	})

	t.Run("FilterByDescription", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		createTodo(t, store, owner.ID, "with", ptr.To("Remember the Groceries"))
		createTodo(t, store, owner.ID, "without", nil)

		page, err := store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take:   10,
			Filter: &domain.QueryFilter{Field: domain.FieldDescription, Contains: "groceries"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"with"}, titles(page))
	})

	t.Run("SortByTitle", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		for _, title := range []string{"bravo", "alpha", "charlie"} {
			createTodo(t, store, owner.ID, title, nil)
		}

		page, err := store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take: 10,
			Sort: &domain.QuerySort{Field: domain.FieldTitle, Direction: domain.SortAsc},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, titles(page))

		page, err = store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take: 10,
			Sort: &domain.QuerySort{Field: domain.FieldTitle, Direction: domain.SortDesc},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"charlie", "bravo", "alpha"}, titles(page))
	})

	t.Run("SortByRemindAtPutsMissingLast", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")
		createRemindedTodo(t, store, owner.ID, "none", nil)
		createRemindedTodo(t, store, owner.ID, "late", ptr.To(Epoch.Add(2*time.Hour)))
		createRemindedTodo(t, store, owner.ID, "early", ptr.To(Epoch.Add(time.Hour)))

		for _, tt := range []struct {
			dir  domain.SortDirection
			want []string
		}{
			{domain.SortAsc, []string{"early", "late", "none"}},
			{domain.SortDesc, []string{"late", "early", "none"}},
		} {
			page, err := store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
				Take: 10,
				Sort: &domain.QuerySort{Field: domain.FieldRemindAt, Direction: tt.dir},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(page), tt.dir)
		}
	})

	t.Run("UnsupportedQueryFields", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")

		_, err := store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take:   10,
			Filter: &domain.QueryFilter{Field: "userId; DROP TABLE todos", Contains: "x"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQueryField)

		_, err = store.FindByUserID(ctx, owner.ID, domain.TodoQuery{
			Take: 10,
			Sort: &domain.QuerySort{Field: "passwordHash", Direction: domain.SortAsc},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQueryField)
	})

	t.Run("FindDueReminders", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		owner := createUser(t, store, "owner@example.com")

		past := createRemindedTodo(t, store, owner.ID, "past", ptr.To(Epoch.Add(-time.Hour)))
		exact := createRemindedTodo(t, store, owner.ID, "exact", ptr.To(Epoch))
		createRemindedTodo(t, store, owner.ID, "future", ptr.To(Epoch.Add(time.Hour)))
		createRemindedTodo(t, store, owner.ID, "none", nil)
		done := createRemindedTodo(t, store, owner.ID, "done", ptr.To(Epoch.Add(-time.Hour)))
		due := createRemindedTodo(t, store, owner.ID, "due", ptr.To(Epoch.Add(-time.Hour)))

		_, err := store.Update(ctx, done.ID, domain.TodoPatch{Status: ptr.To(domain.TodoStatusDone)})
		require.NoError(t, err)
		_, err = store.Update(ctx, due.ID, domain.TodoPatch{Status: ptr.To(domain.TodoStatusReminderDue)})
		require.NoError(t, err)

		found, err := store.FindDueReminders(ctx, Epoch)
		require.NoError(t, err)

		ids := make([]string, 0, len(found))
		for _, todo := range found {
			ids = append(ids, todo.ID)
			assert.Equal(t, domain.TodoStatusPending, todo.Status)
		}
		assert.ElementsMatch(t, []string{past.ID, exact.ID}, ids)
	})

	t.Run("CreateAndFindUser", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()

		created := createUser(t, store, "ada@example.com")
		_, err := uuid.Parse(created.ID)
		assert.NoError(t, err)
		assert.True(t, created.CreatedAt.Equal(Epoch))

		byID, err := store.FindUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", byID.Email)
		assert.Equal(t, "hash", byID.PasswordHash)

		byEmail, err := store.FindUserByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		store, _ := newStore(t)
		createUser(t, store, "ada@example.com")

		_, err := store.CreateUser(context.Background(), &domain.User{
			Name:         "Imposter",
			Email:        "Ada@Example.com",
			PasswordHash: "hash",
		})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("FindMissingUser", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()

		_, err := store.FindUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = store.FindUserByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = store.FindUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("ListUsersInRegistrationOrder", func(t *testing.T) {
		store, fc := newStore(t)
		ctx := context.Background()

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)

		var want []string
		for _, email := range []string{"b@example.com", "a@example.com", "c@example.com"} {
			want = append(want, createUser(t, store, email).ID)
			fc.Advance(time.Second)
		}

		users, err = store.ListUsers(ctx)
		require.NoError(t, err)
		got := make([]string, 0, len(users))
		for _, u := range users {
			got = append(got, u.ID)
		}
		assert.Equal(t, want, got)
	})

	t.Run("RefreshTokenHashLifecycle", func(t *testing.T) {
		store, _ := newStore(t)
		ctx := context.Background()
		u := createUser(t, store, "ada@example.com")
		assert.Empty(t, u.RefreshTokenHash)

		require.NoError(t, store.SetRefreshTokenHash(ctx, u.ID, "h1"))
		fetched, err := store.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "h1", fetched.RefreshTokenHash)

		require.NoError(t, store.RotateRefreshTokenHash(ctx, u.ID, "h1", "h2"))
		err = store.RotateRefreshTokenHash(ctx, u.ID, "h1", "h3")
		assert.ErrorIs(t, err, domain.ErrRefreshTokenRevoked, "a rotated hash is not accepted twice")

		require.NoError(t, store.SetRefreshTokenHash(ctx, u.ID, ""))
		fetched, err = store.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, fetched.RefreshTokenHash)

		err = store.RotateRefreshTokenHash(ctx, u.ID, "", "h4")
		assert.ErrorIs(t, err, domain.ErrRefreshTokenRevoked, "a cleared hash matches nothing")

		missing := uuid.NewString()
		assert.ErrorIs(t, store.SetRefreshTokenHash(ctx, missing, "h"), domain.ErrUserNotFound)
		assert.ErrorIs(t, store.RotateRefreshTokenHash(ctx, missing, "h", "h2"), domain.ErrUserNotFound)
	})
}

func createUser(t *testing.T, store Store, email string) *domain.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func createTodo(t *testing.T, store Store, userID, title string, description *string) *domain.Todo {
	t.Helper()
	created, err := store.Create(context.Background(), domain.NewTodo{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      domain.TodoStatusPending,
	})
	require.NoError(t, err)
	return created
}

func createRemindedTodo(t *testing.T, store Store, userID, title string, remindAt *time.Time) *domain.Todo {
	t.Helper()
	created, err := store.Create(context.Background(), domain.NewTodo{
		UserID:   userID,
		Title:    title,
		Status:   domain.TodoStatusPending,
		RemindAt: remindAt,
	})
	require.NoError(t, err)
	return created
}

func titles(page *domain.TodoPage) []string {
	out := make([]string, 0, len(page.Data))
	for _, todo := range page.Data {
		out = append(out, todo.Title)
	}
	return out
}
