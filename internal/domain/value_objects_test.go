package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "Buy groceries", want: "Buy groceries"},
		{name: "trims surrounding space", input: "  Call dentist  ", want: "Call dentist"},
		{name: "empty", input: "", wantErr: ErrTitleRequired},
		{name: "whitespace only", input: "   ", wantErr: ErrTitleRequired},
		{name: "tabs and newlines", input: "\t\n", wantErr: ErrTitleRequired},
		{name: "too long", input: strings.Repeat("a", 256), wantErr: ErrTitleTooLong},
		{name: "max length", input: strings.Repeat("a", 255), want: strings.Repeat("a", 255)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, err := NewTitle(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, title.String())
		})
	}
}

func TestNewTodoStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "done", "Reminder_Due"} {
		_, err := NewTodoStatus(s)
		assert.NoError(t, err, s)
	}

	_, err := NewTodoStatus("ARCHIVED")
	require.ErrorIs(t, err, ErrInvalidTodoStatus)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParseRemindAt(t *testing.T) {
	got, err := ParseRemindAt("2026-03-01T09:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())

	got, err = ParseRemindAt("2026-03-01T07:30:00.123Z")
	require.NoError(t, err)
	assert.Equal(t, 123*time.Millisecond, time.Duration(got.Nanosecond()))

	_, err = ParseRemindAt("tomorrow")
	require.ErrorIs(t, err, ErrInvalidRemindAt)
}

func TestNewSortDirection(t *testing.T) {
	assert.Equal(t, SortDesc, NewSortDirection("desc"))
	assert.Equal(t, SortDesc, NewSortDirection("DESC"))
	assert.Equal(t, SortAsc, NewSortDirection("asc"))
	assert.Equal(t, SortAsc, NewSortDirection(""))
	assert.Equal(t, SortAsc, NewSortDirection("descending"))
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrTodoNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrUserNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrEmailTaken, ErrConflict)
	assert.ErrorIs(t, ErrTodoVanished, ErrInternal)
	assert.ErrorIs(t, ErrInvalidCredentials, ErrUnauthorized)
	assert.NotErrorIs(t, ErrTodoNotFound, ErrValidation)
}
