package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the application layer wraps exactly one
// of these, so boundaries can classify failures with errors.Is.
var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates the request conflicts with existing state.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates a storage invariant was violated in a way the
	// caller cannot fix.
	ErrInternal = errors.New("internal error")
)

// Validation errors.
var (
	ErrTitleRequired      = fmt.Errorf("%w: title is required", ErrValidation)
	ErrTitleTooLong       = fmt.Errorf("%w: title must be 255 characters or less", ErrValidation)
	ErrInvalidRemindAt    = fmt.Errorf("%w: remindAt must be an ISO-8601 timestamp", ErrValidation)
	ErrInvalidTodoStatus  = fmt.Errorf("%w: invalid todo status", ErrValidation)
	ErrInvalidPagination  = fmt.Errorf("%w: page and limit must produce a non-negative offset and a positive page size", ErrValidation)
	ErrInvalidQueryField  = fmt.Errorf("%w: unsupported query field", ErrValidation)
	ErrInvalidID          = fmt.Errorf("%w: invalid ID format", ErrValidation)
	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrValidation)
	ErrEmailRequired      = fmt.Errorf("%w: email is required", ErrValidation)
	ErrPasswordRequired   = fmt.Errorf("%w: password is required", ErrValidation)
	ErrPasswordTooLong    = fmt.Errorf("%w: password must be 72 bytes or less", ErrValidation)
)

// Authentication errors.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: email or password invalid", ErrUnauthorized)

	// ErrRefreshTokenRevoked is returned for a well-formed refresh token that
	// is no longer the user's current one (rotated or logged out).
	ErrRefreshTokenRevoked = fmt.Errorf("%w: refresh token revoked", ErrUnauthorized)
)

// Not found errors.
var (
	ErrTodoNotFound = fmt.Errorf("%w: todo", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// Conflict errors.
var (
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)

	// ErrStatusChanged is returned by a conditional update whose expected
	// status no longer matches the stored one.
	ErrStatusChanged = fmt.Errorf("%w: todo status changed concurrently", ErrConflict)
)

// ErrTodoVanished is returned when a todo disappears between the existence
// check and the write that follows it.
var ErrTodoVanished = fmt.Errorf("%w: todo disappeared during update", ErrInternal)
