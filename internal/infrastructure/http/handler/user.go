package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todoreminder/internal/infrastructure/http/response"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates a user.
// POST /users
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, MapUserToDTO(u))
}

// Login exchanges credentials for an access and refresh token pair.
// POST /users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapSessionToDTO(session))
}

// Refresh trades the current refresh token for a new pair.
// POST /users/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		response.ValidationError(w, "refreshToken", "required field missing")
		return
	}

	session, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapSessionToDTO(session))
}

// Logout revokes the caller's refresh token.
// POST /users/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.users.Logout(r.Context(), userID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}

// ListUsers returns every registered user.
// GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapUsersToDTO(users))
}

// GetUser returns a user by id.
// GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapUserToDTO(u))
}
