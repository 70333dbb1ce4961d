package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rezkam/todoreminder/internal/domain"
)

const userColumns = `id, name, email, password_hash, coalesce(refresh_token_hash, ''), created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RefreshTokenHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user with a UUIDv7 id.
// Returns domain.ErrEmailTaken if the email is registered (case-insensitive).
func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	created, err := scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		id.String(), u.Name, u.Email, u.PasswordHash, formatTime(s.clock.Now()),
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
	return s.findUser(ctx, `id = ?`, id)
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, `lower(email) = lower(?)`, email)
}

func (s *Store) findUser(ctx context.Context, cond string, arg string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, arg)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// ListUsers returns every user in registration order.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
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
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = nullif(?, '') WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return nil
}

// RotateRefreshTokenHash swaps current for next in a single conditional UPDATE.
func (s *Store) RotateRefreshTokenHash(ctx context.Context, id, current, next string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET refresh_token_hash = nullif(?, '')
		WHERE id = ? AND refresh_token_hash = ?`,
		next, id, current,
	)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if n == 1 {
		return nil
	}

	if _, err := s.FindUserByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrRefreshTokenRevoked
}
