package todo

import (
	"context"
	"time"

	"github.com/rezkam/todoreminder/internal/domain"
)

// Repository defines storage operations for todos.
// Implementations must make Update atomic per record: a read-modify-write on
// one id never interleaves with another read-modify-write on the same id.
type Repository interface {
	// Create persists a new todo and returns it as stored.
	// The repository assigns ID, CreatedAt and UpdatedAt (CreatedAt == UpdatedAt).
	Create(ctx context.Context, todo domain.NewTodo) (*domain.Todo, error)

	// Update applies a partial update and refreshes UpdatedAt.
	// Returns domain.ErrTodoNotFound if the todo doesn't exist.
	Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error)

	// FindByID retrieves a single todo.
	// Returns domain.ErrTodoNotFound if the todo doesn't exist.
	FindByID(ctx context.Context, id string) (*domain.Todo, error)

	// FindByUserID returns one page of the user's todos shaped by query,
	// together with the total number of matching todos.
	// Returns domain.ErrInvalidQueryField for unsupported filter/sort fields.
	FindByUserID(ctx context.Context, userID string, query domain.TodoQuery) (*domain.TodoPage, error)

	// FindDueReminders returns every PENDING todo whose RemindAt is at or
	// before currentTime. DONE and REMINDER_DUE todos are excluded here.
	FindDueReminders(ctx context.Context, currentTime time.Time) ([]*domain.Todo, error)
}

// UserFinder is the user lookup needed to validate todo ownership.
type UserFinder interface {
	// FindUserByID returns domain.ErrUserNotFound if no user has this id.
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
}
