package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/todoreminder/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{{Field: field, Issue: issue}},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Unauthorized sends a 401 Unauthorized error.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, "UNAUTHORIZED", message, http.StatusUnauthorized)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// InternalError logs err with the request context and sends a generic 500.
// The client never sees the underlying error text.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Field-level validation errors (400)
	case errors.Is(err, domain.ErrTitleRequired):
		ValidationError(w, "title", "required field missing")
	case errors.Is(err, domain.ErrTitleTooLong):
		ValidationError(w, "title", "must be 255 characters or less")
	case errors.Is(err, domain.ErrInvalidRemindAt):
		ValidationError(w, "remindAt", "must be an ISO-8601 timestamp")
	case errors.Is(err, domain.ErrInvalidQueryField):
		ValidationError(w, "searchBy/sortBy", "unsupported field")
	case errors.Is(err, domain.ErrInvalidPagination):
		ValidationError(w, "page/limit", "out of range")
	case errors.Is(err, domain.ErrNameRequired):
		ValidationError(w, "name", "required field missing")
	case errors.Is(err, domain.ErrEmailRequired):
		ValidationError(w, "email", "required field missing")
	case errors.Is(err, domain.ErrPasswordRequired):
		ValidationError(w, "password", "required field missing")
	case errors.Is(err, domain.ErrPasswordTooLong):
		ValidationError(w, "password", "must be 72 bytes or less")
	case errors.Is(err, domain.ErrValidation):
		BadRequest(w, err.Error())

	// Not found errors (404)
	case errors.Is(err, domain.ErrTodoNotFound):
		NotFound(w, "todo")
	case errors.Is(err, domain.ErrUserNotFound):
		NotFound(w, "user")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource")

	// Auth errors (401)
	case errors.Is(err, domain.ErrInvalidCredentials):
		Unauthorized(w, "email or password invalid")
	case errors.Is(err, domain.ErrRefreshTokenRevoked):
		Unauthorized(w, "refresh token revoked")
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, "invalid or missing token")

	// Conflict errors (409)
	case errors.Is(err, domain.ErrEmailTaken):
		Conflict(w, "email already registered")
	case errors.Is(err, domain.ErrConflict):
		Conflict(w, err.Error())

	default:
		InternalError(w, r, err)
	}
}
