package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rezkam/todoreminder/internal/application/todo"
	"github.com/rezkam/todoreminder/internal/domain"
)

// DefaultTTL bounds how long a cached page may be served.
const DefaultTTL = 30 * time.Second

// TodoRepository caches FindByUserID pages in front of another repository.
//
// Each user has a generation counter that is part of every page key. Writes
// bump the counter, so pages cached before the write are never read again and
// simply expire. Cache failures are logged and fall through to the wrapped
// repository.
type TodoRepository struct {
	todo.Repository

	store Store
	ttl   time.Duration
	sf    singleflight.Group
}

var _ todo.Repository = (*TodoRepository)(nil)

// NewTodoRepository wraps next. A non-positive ttl uses DefaultTTL.
func NewTodoRepository(next todo.Repository, store Store, ttl time.Duration) *TodoRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TodoRepository{
		Repository: next,
		store:      store,
		ttl:        ttl,
	}
}

// Create stores the todo and invalidates the owner's cached pages.
func (r *TodoRepository) Create(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	created, err := r.Repository.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, created.UserID)
	return created, nil
}

// Update applies the patch and invalidates the owner's cached pages.
func (r *TodoRepository) Update(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	updated, err := r.Repository.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, updated.UserID)
	return updated, nil
}

// FindByUserID serves the page from cache when possible. Concurrent misses
// for the same key share one repository call.
func (r *TodoRepository) FindByUserID(ctx context.Context, userID string, query domain.TodoQuery) (*domain.TodoPage, error) {
	key, err := r.pageKey(ctx, userID, query)
	if err != nil {
		slog.WarnContext(ctx, "todo cache unavailable, reading through",
			"user_id", userID,
			"error", err)
		return r.Repository.FindByUserID(ctx, userID, query)
	}

	if page, ok := r.get(ctx, key); ok {
		return page, nil
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		page, err := r.Repository.FindByUserID(ctx, userID, query)
		if err != nil {
			return nil, err
		}
		r.set(ctx, key, page)
		return page, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.TodoPage), nil
}

func generationKey(userID string) string {
	return "todo:user:" + userID + ":gen"
}

func (r *TodoRepository) pageKey(ctx context.Context, userID string, query domain.TodoQuery) (string, error) {
	gen := int64(0)
	b, ok, err := r.store.Get(ctx, generationKey(userID))
	if err != nil {
		return "", err
	}
	if ok {
		if gen, err = strconv.ParseInt(string(b), 10, 64); err != nil {
			return "", fmt.Errorf("corrupt generation for user %s: %w", userID, err)
		}
	}

	raw, err := json.Marshal(query)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)

	return fmt.Sprintf("todo:user:%s:g%d:page:%s", userID, gen, hex.EncodeToString(sum[:16])), nil
}

func (r *TodoRepository) get(ctx context.Context, key string) (*domain.TodoPage, bool) {
	b, ok, err := r.store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "todo cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var page domain.TodoPage
	if err := json.Unmarshal(b, &page); err != nil {
		slog.WarnContext(ctx, "todo cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	if page.Data == nil {
		page.Data = []*domain.Todo{}
	}
	return &page, true
}

func (r *TodoRepository) set(ctx context.Context, key string, page *domain.TodoPage) {
	b, err := json.Marshal(page)
	if err != nil {
		slog.WarnContext(ctx, "todo cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.store.Set(ctx, key, b, r.ttl); err != nil {
		slog.WarnContext(ctx, "todo cache write failed", "key", key, "error", err)
	}
}

func (r *TodoRepository) invalidate(ctx context.Context, userID string) {
	if _, err := r.store.Incr(ctx, generationKey(userID)); err != nil {
		slog.WarnContext(ctx, "todo cache invalidation failed",
			"user_id", userID,
			"error", err)
	}
}
