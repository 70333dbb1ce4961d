package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/todoreminder/internal/domain"
)

// todoColumns is the select list scanTodo expects, in order.
const todoColumns = `id::text, user_id::text, title, description, status, remind_at, created_at, updated_at`

// userColumns is the select list scanUser expects, in order.
const userColumns = `id::text, name, email, password_hash, coalesce(refresh_token_hash, ''), created_at`

// === pgtype Conversion Helpers ===

// pgtypeToTime converts pgtype.Timestamptz to time.Time (zero if invalid).
// Always returns time in UTC location for consistent timezone handling.
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// pgtypeToTimePtr converts pgtype.Timestamptz to *time.Time (nil if invalid).
func pgtypeToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	utcTime := t.Time.UTC()
	return &utcTime
}

// timePtrToPgtype converts *time.Time to pgtype.Timestamptz; nil stores NULL.
func timePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// pgtypeToStringPtr converts pgtype.Text to *string (nil if NULL).
func pgtypeToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// stringPtrToPgtype converts *string to pgtype.Text; nil stores NULL.
func stringPtrToPgtype(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// statusToPgtype converts an optional status to pgtype.Text.
func statusToPgtype(s *domain.TodoStatus) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: string(*s), Valid: true}
}

// === Row Scanners ===

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var (
		t           domain.Todo
		description pgtype.Text
		status      string
		remindAt    pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &description, &status, &remindAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := domain.NewTodoStatus(status)
	if err != nil {
		return nil, fmt.Errorf("todo %s has invalid stored status: %w", t.ID, err)
	}

	t.Description = pgtypeToStringPtr(description)
	t.Status = parsed
	t.RemindAt = pgtypeToTimePtr(remindAt)
	t.CreatedAt = pgtypeToTime(createdAt)
	t.UpdatedAt = pgtypeToTime(updatedAt)

	return &t, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RefreshTokenHash, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = pgtypeToTime(createdAt)
	return &u, nil
}
