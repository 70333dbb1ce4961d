package domain

import (
	"fmt"
	"strings"
	"time"
)

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if len(s) > 255 {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// NewTodoStatus validates and creates a TodoStatus.
func NewTodoStatus(s string) (TodoStatus, error) {
	status := TodoStatus(strings.ToUpper(s))

	switch status {
	case TodoStatusPending, TodoStatusDone, TodoStatusReminderDue:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTodoStatus, s)
	}
}

// ParseRemindAt parses an ISO-8601 timestamp into a UTC time.
// Accepts RFC 3339 with or without fractional seconds.
func ParseRemindAt(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRemindAt, s)
	}
	return t.UTC(), nil
}

// NewSortDirection maps a raw direction to asc/desc.
// Only "desc" (any case) selects descending; anything else is ascending.
func NewSortDirection(s string) SortDirection {
	if strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}
