package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todoreminder/internal/application/todo"
	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/infrastructure/http/response"
	"github.com/rezkam/todoreminder/internal/ptr"
)

// Bounds for the list endpoint's query parameters.
const (
	MaxLimit = 100
	MinPage  = 1
)

type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	RemindAt    *string `json:"remindAt"`
}

// CreateTodo creates a todo owned by the caller.
// POST /todos
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.todos.CreateTodo(r.Context(), userID, todo.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		RemindAt:    req.RemindAt,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, MapTodoToDTO(created))
}

// ListTodos returns one page of the caller's todos.
// GET /todos?limit=&page=&searchBy=&searchVal=&sortBy=&sortVal=
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), 1, MaxLimit)
	if err != nil {
		response.ValidationError(w, "limit", "must be an integer between 1 and 100")
		return
	}
	page, err := intParam(q.Get("page"), MinPage, 0)
	if err != nil {
		response.ValidationError(w, "page", "must be an integer of at least 1")
		return
	}

	result, err := h.todos.GetTodosByUser(r.Context(), userID, domain.ListTodosRequest{
		Limit:     limit,
		Page:      page,
		SearchBy:  q.Get("searchBy"),
		SearchVal: q.Get("searchVal"),
		SortBy:    q.Get("sortBy"),
		SortVal:   q.Get("sortVal"),
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapTodoPageToDTO(result, ptr.Deref(page, todo.DefaultPage)))
}

// CompleteTodo marks one of the caller's todos DONE.
// Todos owned by someone else are reported as not found.
// PATCH /todos/{id}/complete
func (h *Handler) CompleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := h.todos.GetTodo(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	if existing.UserID != userID {
		slog.WarnContext(r.Context(), "todo completion denied: not owner",
			"todo_id", id,
			"user_id", userID)
		response.NotFound(w, "todo")
		return
	}

	completed, err := h.todos.CompleteTodo(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapTodoToDTO(completed))
}

var errOutOfRange = errors.New("out of range")

// intParam parses an optional integer query parameter. Empty means absent.
// maxVal <= 0 means unbounded above.
func intParam(raw string, minVal, maxVal int) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	if n < minVal || (maxVal > 0 && n > maxVal) {
		return nil, errOutOfRange
	}
	return &n, nil
}
