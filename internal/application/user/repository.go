package user

import (
	"context"

	"github.com/rezkam/todoreminder/internal/domain"
)

// Repository defines storage operations for users.
// It satisfies todo.UserFinder.
type Repository interface {
	// CreateUser persists a new user; the repository assigns ID and CreatedAt.
	// Returns domain.ErrEmailTaken if the email is registered (case-insensitive).
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)

	// FindUserByID returns domain.ErrUserNotFound if no user has this id.
	FindUserByID(ctx context.Context, id string) (*domain.User, error)

	// FindUserByEmail returns domain.ErrUserNotFound if no user has this email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers returns every user in registration order.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// SetRefreshTokenHash replaces the stored hash; "" clears it.
	// Returns domain.ErrUserNotFound if no user has this id.
	SetRefreshTokenHash(ctx context.Context, id, hash string) error

	// RotateRefreshTokenHash replaces the stored hash only if it still equals
	// current. Returns domain.ErrRefreshTokenRevoked when it does not, and
	// domain.ErrUserNotFound if no user has this id.
	RotateRefreshTokenHash(ctx context.Context, id, current, next string) error
}
