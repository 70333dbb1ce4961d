package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todoreminder/internal/domain"
)

func TestMapTodoToDTO_RendersUTC(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	remind := time.Date(2026, 3, 1, 10, 0, 0, 0, cet)

	dto := MapTodoToDTO(&domain.Todo{
		ID:        "t1",
		UserID:    "u1",
		Title:     "Buy milk",
		Status:    domain.TodoStatusPending,
		RemindAt:  &remind,
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, cet),
		UpdatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, cet),
	})

	require.NotNil(t, dto.RemindAt)
	assert.Equal(t, time.UTC, dto.RemindAt.Location())
	assert.True(t, dto.RemindAt.Equal(remind))

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"remindAt":"2026-03-01T09:00:00Z"`)
	assert.NotContains(t, string(raw), "description")
}

func TestMapTodoPageToDTO_EmptyDataIsArray(t *testing.T) {
	raw, err := json.Marshal(MapTodoPageToDTO(&domain.TodoPage{}, 3))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"count":0,"page":3}`, string(raw))
}

func TestMapUserToDTO_OmitsPasswordHash(t *testing.T) {
	raw, err := json.Marshal(MapUserToDTO(&domain.User{
		ID:               "u1",
		Name:             "Ada",
		Email:            "ada@example.com",
		PasswordHash:     "$2a$10$secret",
		RefreshTokenHash: "deadbeef",
	}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "deadbeef")
}

func TestMapUsersToDTO_EmptyIsArray(t *testing.T) {
	raw, err := json.Marshal(MapUsersToDTO(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
