package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/todoreminder/internal/domain"
)

const todoColumns = `id, user_id, title, description, status, remind_at, created_at, updated_at`

var filterColumns = map[string]string{
	domain.FieldTitle:       "title",
	domain.FieldDescription: "description",
}

var sortColumns = map[string]string{
	domain.FieldTitle:     "title",
	domain.FieldStatus:    "status",
	domain.FieldRemindAt:  "remind_at",
	domain.FieldCreatedAt: "created_at",
	domain.FieldUpdatedAt: "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var (
		t                    domain.Todo
		description          sql.NullString
		status               string
		remindAt             sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &description, &status, &remindAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.Status, err = domain.NewTodoStatus(status); err != nil {
		return nil, fmt.Errorf("todo %s has invalid stored status: %w", t.ID, err)
	}
	if description.Valid {
		t.Description = &description.String
	}
	if remindAt.Valid {
		ts, err := parseTime(remindAt.String)
		if err != nil {
			return nil, err
		}
		t.RemindAt = &ts
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &t, nil
}

// Create inserts a new todo with a UUIDv7 id.
// Returns domain.ErrUserNotFound if the owner doesn't exist.
func (s *Store) Create(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}
	now := formatTime(s.clock.Now())

	var description sql.NullString
	if in.Description != nil {
		description = sql.NullString{String: *in.Description, Valid: true}
	}

	created, err := scanTodo(s.db.QueryRowContext(ctx, `
		INSERT INTO todos (id, user_id, title, description, status, remind_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+todoColumns,
		id.String(), in.UserID, in.Title, description, string(in.Status), formatTimePtr(in.RemindAt), now, now,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, in.UserID)
		}
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	return created, nil
}

// Update reads, patches and writes the todo inside one transaction. The pool
// has a single connection, so the read-modify-write cannot interleave.
func (s *Store) Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	var updated *domain.Todo

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanTodo(tx.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to load todo: %w", err)
		}
		if !patch.Permits(current) {
			return fmt.Errorf("%w: %s is %s", domain.ErrStatusChanged, id, current.Status)
		}

		patch.Apply(current)
		current.UpdatedAt = domain.NextUpdatedAt(current.UpdatedAt, s.clock.Now())

		var description sql.NullString
		if current.Description != nil {
			description = sql.NullString{String: *current.Description, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE todos
			SET title = ?, description = ?, status = ?, remind_at = ?, updated_at = ?
			WHERE id = ?`,
			current.Title, description, string(current.Status), formatTimePtr(current.RemindAt),
			formatTime(current.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// FindByID retrieves a todo by id.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	todo, err := scanTodo(s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// FindByUserID counts and pages the user's todos inside one transaction.
func (s *Store) FindByUserID(ctx context.Context, userID string, query domain.TodoQuery) (*domain.TodoPage, error) {
	if err := query.ValidatePaging(); err != nil {
		return nil, err
	}
	where := "user_id = ?"
	args := []any{userID}

	if f := query.Filter; f != nil {
		column, ok := filterColumns[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: cannot search by %q", domain.ErrInvalidQueryField, f.Field)
		}
		// instr matches the needle literally; no LIKE wildcards to escape.
		// casefold instead of lower: the built-in folds ASCII only.
		where += fmt.Sprintf(" AND instr(casefold(%s), casefold(?)) > 0", column)
		args = append(args, f.Contains)
	}

	orderBy := "created_at ASC, id ASC"
	if srt := query.Sort; srt != nil {
		column, ok := sortColumns[srt.Field]
		if !ok {
			return nil, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidQueryField, srt.Field)
		}
		dir := "ASC"
		if srt.Direction == domain.SortDesc {
			dir = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s NULLS LAST, %s", column, dir, orderBy)
	}

	page := &domain.TodoPage{Data: []*domain.Todo{}}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM todos WHERE `+where, args...).Scan(&page.Count); err != nil {
			return fmt.Errorf("failed to count todos: %w", err)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT `+todoColumns+` FROM todos WHERE `+where+` ORDER BY `+orderBy+` LIMIT ? OFFSET ?`,
			append(args, query.Take, query.Skip)...,
		)
		if err != nil {
			return fmt.Errorf("failed to list todos: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			todo, err := scanTodo(rows)
			if err != nil {
				return fmt.Errorf("failed to scan todo: %w", err)
			}
			page.Data = append(page.Data, todo)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// FindDueReminders returns PENDING todos whose remind_at is at or before currentTime.
func (s *Store) FindDueReminders(ctx context.Context, currentTime time.Time) ([]*domain.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE status = ? AND remind_at IS NOT NULL AND remind_at <= ?
		ORDER BY remind_at, id`,
		string(domain.TodoStatusPending), formatTime(currentTime),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var due []*domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		due = append(due, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read due reminders: %w", err)
	}

	return due, nil
}
