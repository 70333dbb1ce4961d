// Package handler adapts HTTP requests to the todo and user services.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todoreminder/internal/application/todo"
	"github.com/rezkam/todoreminder/internal/application/user"
	mw "github.com/rezkam/todoreminder/internal/infrastructure/http/middleware"
	"github.com/rezkam/todoreminder/internal/infrastructure/http/response"
)

// Handler serves the user and todo endpoints.
type Handler struct {
	todos *todo.Service
	users *user.Service
}

// NewHandler creates a new HTTP API handler.
func NewHandler(todos *todo.Service, users *user.Service) *Handler {
	return &Handler{
		todos: todos,
		users: users,
	}
}

// Routes mounts every endpoint on r. Todo routes, logout and the user listing
// are wrapped in requireAuth; registration, login, refresh and single-user
// lookup are public.
func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.With(requireAuth).Post("/logout", h.Logout)
		r.With(requireAuth).Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
	})

	r.Route("/todos", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.CreateTodo)
		r.Get("/", h.ListTodos)
		r.Patch("/{id}/complete", h.CompleteTodo)
	})
}

// decodeBody reads a JSON body into dst. On failure it has already written
// the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if mw.IsBodyTooLarge(err) {
			mw.PayloadTooLarge(w)
			return false
		}
		response.BadRequest(w, "invalid JSON")
		return false
	}
	return true
}

// callerID returns the authenticated user. Routes behind requireAuth always
// have one; the check guards against a route mounted without it.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := mw.UserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
	}
	return id, ok
}
