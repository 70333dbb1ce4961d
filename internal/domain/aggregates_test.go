package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rezkam/todoreminder/internal/ptr"
)

func TestTodo_ReminderEligible(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   TodoStatus
		remindAt *time.Time
		want     bool
	}{
		{"pending past", TodoStatusPending, ptr.To(now.Add(-time.Hour)), true},
		{"pending exactly now", TodoStatusPending, ptr.To(now), true},
		{"pending future", TodoStatusPending, ptr.To(now.Add(time.Second)), false},
		{"pending without reminder", TodoStatusPending, nil, false},
		{"done past", TodoStatusDone, ptr.To(now.Add(-time.Hour)), false},
		{"already due", TodoStatusReminderDue, ptr.To(now.Add(-time.Hour)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo := &Todo{Status: tt.status, RemindAt: tt.remindAt}
			assert.Equal(t, tt.want, todo.ReminderEligible(now))
		})
	}
}

func TestTodo_CloneDoesNotShareFields(t *testing.T) {
	orig := &Todo{
		ID:          "t1",
		Description: ptr.To("milk"),
		RemindAt:    ptr.To(time.Unix(100, 0)),
	}

	c := orig.Clone()
	*c.Description = "eggs"
	*c.RemindAt = time.Unix(200, 0)

	assert.Equal(t, "milk", *orig.Description)
	assert.Equal(t, time.Unix(100, 0), *orig.RemindAt)
}

func TestTodoPatch_Apply(t *testing.T) {
	todo := &Todo{Title: "a", Status: TodoStatusPending}

	TodoPatch{Status: ptr.To(TodoStatusDone)}.Apply(todo)

	assert.Equal(t, "a", todo.Title)
	assert.Equal(t, TodoStatusDone, todo.Status)
	assert.Nil(t, todo.Description)
}

func TestNextUpdatedAt(t *testing.T) {
	prev := time.Unix(1000, 0)

	assert.Equal(t, prev.Add(time.Second), NextUpdatedAt(prev, prev.Add(time.Second)))
	assert.True(t, NextUpdatedAt(prev, prev).After(prev))
	assert.True(t, NextUpdatedAt(prev, prev.Add(-time.Hour)).After(prev))
}

func TestTodoPatch_Permits(t *testing.T) {
	todo := &Todo{Status: TodoStatusDone}

	assert.True(t, TodoPatch{}.Permits(todo))
	assert.True(t, TodoPatch{IfStatus: ptr.To(TodoStatusDone)}.Permits(todo))
	assert.False(t, TodoPatch{IfStatus: ptr.To(TodoStatusPending)}.Permits(todo))
}
