package todo

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/ptr"
)

const instrumentationName = "github.com/rezkam/todoreminder/internal/application/todo"

var tracer = otel.Tracer(instrumentationName)

// CreateTodoInput is the caller-supplied data for a new todo.
type CreateTodoInput struct {
	Title       string
	Description *string
	RemindAt    *string // ISO-8601 timestamp; nil means no reminder
}

// Service provides the todo lifecycle: creation, completion, paginated
// retrieval and the reminder sweep.
// It orchestrates operations using the Repository and UserFinder interfaces.
type Service struct {
	repo    Repository
	users   UserFinder
	clock   clock.Clock
	sweeper *ReminderSweeper
}

// Option is a functional option for configuring Service.
type Option func(*Service)

// WithClock sets the time source used by the reminder sweep.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// NewService creates a new todo service.
func NewService(repo Repository, users UserFinder, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		users: users,
		clock: clock.System{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sweeper = NewReminderSweeper(repo, s.clock)

	return s
}

// CreateTodo creates a PENDING todo owned by userID.
// Returns domain.ErrTitleRequired for blank titles, domain.ErrInvalidRemindAt
// for unparseable reminder times, and domain.ErrUserNotFound when the owner
// doesn't exist. Nothing is written unless all checks pass.
func (s *Service) CreateTodo(ctx context.Context, userID string, input CreateTodoInput) (_ *domain.Todo, err error) {
	ctx, span := tracer.Start(ctx, "todo.Service.CreateTodo", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer endSpan(span, &err)

	title, err := domain.NewTitle(input.Title)
	if err != nil {
		return nil, err
	}

	newTodo := domain.NewTodo{
		UserID:      userID,
		Title:       title.String(),
		Description: input.Description,
		Status:      domain.TodoStatusPending,
	}

	if input.RemindAt != nil {
		remindAt, err := domain.ParseRemindAt(*input.RemindAt)
		if err != nil {
			return nil, err
		}
		newTodo.RemindAt = &remindAt
	}

	if _, err := s.users.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	created, err := s.repo.Create(ctx, newTodo)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return created, nil
}

// GetTodo retrieves a single todo by ID.
func (s *Service) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	if id == "" {
		return nil, domain.ErrTodoNotFound
	}

	return s.repo.FindByID(ctx, id)
}

// CompleteTodo moves a todo to DONE.
//
// PENDING and REMINDER_DUE todos transition to DONE. Completing a todo that is
// already DONE returns the stored record without writing, so UpdatedAt does
// not move. Returns domain.ErrTodoNotFound for unknown ids and
// domain.ErrTodoVanished if the todo disappears between the lookup and the
// write.
func (s *Service) CompleteTodo(ctx context.Context, id string) (_ *domain.Todo, err error) {
	ctx, span := tracer.Start(ctx, "todo.Service.CompleteTodo", trace.WithAttributes(
		attribute.String("todo.id", id),
	))
	defer endSpan(span, &err)

	if id == "" {
		return nil, domain.ErrTodoNotFound
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err // Repository returns domain errors
	}

	if existing.Status == domain.TodoStatusDone {
		return existing, nil
	}

	updated, err := s.repo.Update(ctx, id, domain.TodoPatch{
		Status: ptr.To(domain.TodoStatusDone),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoVanished, id)
		}
		return nil, fmt.Errorf("failed to complete todo: %w", err)
	}

	return updated, nil
}

// GetTodosByUser returns one page of the user's todos and the total number of
// todos matching the same filter. Without a sort clause the order is the
// repository's stable default and carries no meaning.
func (s *Service) GetTodosByUser(ctx context.Context, userID string, req domain.ListTodosRequest) (_ *domain.TodoPage, err error) {
	ctx, span := tracer.Start(ctx, "todo.Service.GetTodosByUser", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer endSpan(span, &err)

	query, err := BuildQuery(req)
	if err != nil {
		return nil, err
	}

	page, err := s.repo.FindByUserID(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return page, nil
}

// ProcessReminders runs one reminder sweep. See ReminderSweeper.Sweep.
func (s *Service) ProcessReminders(ctx context.Context) (int, error) {
	return s.sweeper.Sweep(ctx)
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
