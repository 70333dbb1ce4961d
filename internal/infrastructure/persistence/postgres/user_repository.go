package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rezkam/todoreminder/internal/domain"
)

// CreateUser inserts a user with a UUIDv7 id.
// The unique index on lower(email) turns duplicates into domain.ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	created, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		id.String(), u.Name, u.Email, u.PasswordHash, s.clock.Now(),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return created, nil
}

// FindUserByID retrieves a user by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return u, nil
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return u, nil
}

// ListUsers returns every user in registration order.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// SetRefreshTokenHash replaces the user's refresh token hash; "" clears it.
func (s *Store) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = nullif($2, '') WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return nil
}

// RotateRefreshTokenHash swaps current for next in a single conditional UPDATE,
// so two concurrent refreshes with the same token cannot both succeed.
func (s *Store) RotateRefreshTokenHash(ctx context.Context, id, current, next string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET refresh_token_hash = nullif($3, '')
		WHERE id = $1 AND refresh_token_hash = $2`,
		id, current, next,
	)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := s.FindUserByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrRefreshTokenRevoked
}
