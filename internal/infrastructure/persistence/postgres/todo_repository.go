package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rezkam/todoreminder/internal/domain"
)

// filterColumns maps filterable query fields to columns. Anything else is rejected.
var filterColumns = map[string]string{
	domain.FieldTitle:       "title",
	domain.FieldDescription: "description",
}

// sortColumns maps sortable query fields to columns. Anything else is rejected.
var sortColumns = map[string]string{
	domain.FieldTitle:     "title",
	domain.FieldStatus:    "status",
	domain.FieldRemindAt:  "remind_at",
	domain.FieldCreatedAt: "created_at",
	domain.FieldUpdatedAt: "updated_at",
}

// Create inserts a new todo with a UUIDv7 id.
// Returns domain.ErrUserNotFound if the owner doesn't exist.
func (s *Store) Create(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	if _, err := uuid.Parse(in.UserID); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, in.UserID)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}
	now := s.clock.Now()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO todos (id, user_id, title, description, status, remind_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+todoColumns,
		id.String(), in.UserID, in.Title, stringPtrToPgtype(in.Description), string(in.Status),
		timePtrToPgtype(in.RemindAt), now,
	)

	created, err := scanTodo(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, in.UserID)
		}
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	return created, nil
}

// Update applies patch in a single UPDATE statement, so the status guard and
// the write are atomic. updated_at moves to max(now, previous + 1µs).
func (s *Store) Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE todos SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			status      = COALESCE($4, status),
			remind_at   = COALESCE($5, remind_at),
			updated_at  = GREATEST($6::timestamptz, updated_at + interval '1 microsecond')
		WHERE id = $1 AND ($7::text IS NULL OR status = $7::text)
		RETURNING `+todoColumns,
		id,
		stringPtrToPgtype(patch.Title),
		stringPtrToPgtype(patch.Description),
		statusToPgtype(patch.Status),
		timePtrToPgtype(patch.RemindAt),
		s.clock.Now(),
		statusToPgtype(patch.IfStatus),
	)

	updated, err := scanTodo(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	// Zero rows: either the todo is gone or the status guard failed.
	var current string
	lookupErr := s.pool.QueryRow(ctx, `SELECT status FROM todos WHERE id = $1`, id).Scan(&current)
	if errors.Is(lookupErr, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}
	if lookupErr != nil {
		return nil, fmt.Errorf("failed to check todo existence: %w", lookupErr)
	}
	return nil, fmt.Errorf("%w: %s is %s", domain.ErrStatusChanged, id, current)
}

// FindByID retrieves a todo by id.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}

	todo, err := scanTodo(s.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// FindByUserID reads the page and the total count from one snapshot.
// Rows are ordered by the requested column (NULLs last), then by creation.
func (s *Store) FindByUserID(ctx context.Context, userID string, query domain.TodoQuery) (*domain.TodoPage, error) {
	if err := query.ValidatePaging(); err != nil {
		return nil, err
	}
	where, args, err := buildWhere(userID, query.Filter)
	if err != nil {
		return nil, err
	}
	orderBy, err := buildOrderBy(query.Sort)
	if err != nil {
		return nil, err
	}

	page := &domain.TodoPage{Data: []*domain.Todo{}}
	if _, err := uuid.Parse(userID); err != nil {
		return page, nil
	}

	err = s.readInSnapshot(ctx, "FindByUserID", func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM todos WHERE `+where, args...).Scan(&page.Count); err != nil {
			return fmt.Errorf("failed to count todos: %w", err)
		}

		pageArgs := append(args, query.Take, query.Skip)
		rows, err := tx.Query(ctx, fmt.Sprintf(
			`SELECT %s FROM todos WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
			todoColumns, where, orderBy, len(args)+1, len(args)+2,
		), pageArgs...)
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
	rows, err := s.pool.Query(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE status = $1 AND remind_at IS NOT NULL AND remind_at <= $2
		ORDER BY remind_at, id`,
		string(domain.TodoStatusPending), currentTime,
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

func buildWhere(userID string, f *domain.QueryFilter) (string, []any, error) {
	where := "user_id = $1"
	args := []any{userID}

	if f == nil {
		return where, args, nil
	}

	column, ok := filterColumns[f.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: cannot search by %q", domain.ErrInvalidQueryField, f.Field)
	}

	where += fmt.Sprintf(` AND %s ILIKE '%%' || $2::text || '%%' ESCAPE '\'`, column)
	args = append(args, escapeLike(f.Contains))
	return where, args, nil
}

func buildOrderBy(s *domain.QuerySort) (string, error) {
	const tieBreak = "created_at ASC, id ASC"
	if s == nil {
		return tieBreak, nil
	}

	column, ok := sortColumns[s.Field]
	if !ok {
		return "", fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidQueryField, s.Field)
	}

	dir := "ASC"
	if s.Direction == domain.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, %s", column, dir, tieBreak), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
