// Package memory provides an in-process implementation of the todo and user
// repositories. Every operation runs under a single mutex, so each Update is
// an atomic read-modify-write on its record.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
)

// Store keeps todos and users in mutex-guarded maps.
type Store struct {
	mu    sync.RWMutex
	clock clock.Clock

	todos     map[string]*domain.Todo
	todoOrder []string // insertion order, the default listing order

	users       map[string]*domain.User
	usersByMail map[string]string // lower-cased email -> user id
}

// Option is a functional option for configuring Store.
type Option func(*Store)

// WithClock sets the time source used for CreatedAt/UpdatedAt stamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:       clock.System{},
		todos:       make(map[string]*domain.Todo),
		users:       make(map[string]*domain.User),
		usersByMail: make(map[string]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Close is a no-op; it lets the store stand in wherever a closable store is expected.
func (s *Store) Close() error {
	return nil
}

// === Todo Operations ===

// Create stores a new todo with a generated UUIDv7 id.
func (s *Store) Create(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	todo := &domain.Todo{
		ID:          id.String(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		RemindAt:    in.RemindAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	todo = todo.Clone()

	s.todos[todo.ID] = todo
	s.todoOrder = append(s.todoOrder, todo.ID)

	return todo.Clone(), nil
}

// Update applies patch to the todo under the write lock.
func (s *Store) Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}
	if !patch.Permits(todo) {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrStatusChanged, id, todo.Status)
	}

	patch.Apply(todo)
	todo.UpdatedAt = domain.NextUpdatedAt(todo.UpdatedAt, s.clock.Now())

	return todo.Clone(), nil
}

// FindByID retrieves a todo by id.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, ok := s.todos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}

	return todo.Clone(), nil
}

// FindByUserID filters, sorts and pages the user's todos.
// Without a sort clause todos come back in insertion order.
func (s *Store) FindByUserID(ctx context.Context, userID string, query domain.TodoQuery) (*domain.TodoPage, error) {
	if err := query.ValidatePaging(); err != nil {
		return nil, err
	}
	match, err := matcher(query.Filter)
	if err != nil {
		return nil, err
	}
	less, err := comparator(query.Sort)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*domain.Todo, 0)
	for _, id := range s.todoOrder {
		todo := s.todos[id]
		if todo.UserID == userID && match(todo) {
			matched = append(matched, todo.Clone())
		}
	}
	s.mu.RUnlock()

	if less != nil {
		slices.SortStableFunc(matched, less)
	}

	page := &domain.TodoPage{
		Data:  []*domain.Todo{},
		Count: len(matched),
	}
	if query.Skip < len(matched) {
		end := min(query.Skip+query.Take, len(matched))
		page.Data = matched[query.Skip:end]
	}

	return page, nil
}

// FindDueReminders returns PENDING todos whose reminder time has been reached.
func (s *Store) FindDueReminders(ctx context.Context, currentTime time.Time) ([]*domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*domain.Todo
	for _, id := range s.todoOrder {
		todo := s.todos[id]
		if todo.ReminderEligible(currentTime) {
			due = append(due, todo.Clone())
		}
	}

	return due, nil
}

// === User Operations ===

// CreateUser stores a new user with a generated UUIDv7 id.
// Returns domain.ErrEmailTaken if the email (case-insensitive) is registered.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := s.usersByMail[key]; taken {
		return nil, domain.ErrEmailTaken
	}

	stored := *user
	stored.ID = id.String()
	stored.CreatedAt = s.clock.Now()
	stored.RefreshTokenHash = ""

	s.users[stored.ID] = &stored
	s.usersByMail[key] = stored.ID

	out := stored
	return &out, nil
}

// FindUserByID retrieves a user by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	out := *user
	return &out, nil
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByMail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}

	out := *s.users[id]
	return &out, nil
}

// ListUsers returns every user in registration order.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		out := *user
		users = append(users, &out)
	}
	slices.SortFunc(users, func(a, b *domain.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return users, nil
}

// SetRefreshTokenHash replaces the user's refresh token hash; "" clears it.
func (s *Store) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	user.RefreshTokenHash = hash
	return nil
}

// RotateRefreshTokenHash swaps current for next under the store lock.
func (s *Store) RotateRefreshTokenHash(ctx context.Context, id, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	if current == "" || user.RefreshTokenHash != current {
		return domain.ErrRefreshTokenRevoked
	}
	user.RefreshTokenHash = next
	return nil
}

// === Query helpers ===

func matcher(f *domain.QueryFilter) (func(*domain.Todo) bool, error) {
	if f == nil {
		return func(*domain.Todo) bool { return true }, nil
	}

	var field func(*domain.Todo) string
	switch f.Field {
	case domain.FieldTitle:
		field = func(t *domain.Todo) string { return t.Title }
	case domain.FieldDescription:
		field = func(t *domain.Todo) string {
			if t.Description == nil {
				return ""
			}
			return *t.Description
		}
	default:
		return nil, fmt.Errorf("%w: cannot search by %q", domain.ErrInvalidQueryField, f.Field)
	}

	needle := strings.ToLower(f.Contains)
	return func(t *domain.Todo) bool {
		return strings.Contains(strings.ToLower(field(t)), needle)
	}, nil
}

// comparator returns nil when no sort was requested.
// Todos without a reminder sort last in both directions.
func comparator(s *domain.QuerySort) (func(a, b *domain.Todo) int, error) {
	if s == nil {
		return nil, nil
	}

	var cmpFn func(a, b *domain.Todo) int
	switch s.Field {
	case domain.FieldTitle:
		cmpFn = func(a, b *domain.Todo) int { return cmp.Compare(a.Title, b.Title) }
	case domain.FieldStatus:
		cmpFn = func(a, b *domain.Todo) int { return cmp.Compare(a.Status, b.Status) }
	case domain.FieldCreatedAt:
		cmpFn = func(a, b *domain.Todo) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.FieldUpdatedAt:
		cmpFn = func(a, b *domain.Todo) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case domain.FieldRemindAt:
		return func(a, b *domain.Todo) int {
			switch {
			case a.RemindAt == nil && b.RemindAt == nil:
				return 0
			case a.RemindAt == nil:
				return 1
			case b.RemindAt == nil:
				return -1
			}
			c := a.RemindAt.Compare(*b.RemindAt)
			if s.Direction == domain.SortDesc {
				return -c
			}
			return c
		}, nil
	default:
		return nil, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidQueryField, s.Field)
	}

	if s.Direction == domain.SortDesc {
		return func(a, b *domain.Todo) int { return -cmpFn(a, b) }, nil
	}
	return cmpFn, nil
}
