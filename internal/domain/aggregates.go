package domain

import "time"

// Todo is a user-owned task with a lifecycle status and an optional reminder.
//
// ID, UserID and CreatedAt never change after creation. UpdatedAt is owned by
// the repository and strictly increases on every successful mutation.
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Status      TodoStatus

	// RemindAt is the point in time after which a PENDING todo becomes
	// reminder-eligible. Nil means no reminder.
	RemindAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReminderEligible reports whether the reminder sweep should promote this todo
// at the given instant. Only PENDING todos whose reminder time has been reached
// qualify; DONE and REMINDER_DUE todos are never promoted.
func (t *Todo) ReminderEligible(now time.Time) bool {
	return t.Status == TodoStatusPending && t.RemindAt != nil && !t.RemindAt.After(now)
}

// Clone returns a deep copy so callers can hand out records without sharing
// pointer fields with storage.
func (t *Todo) Clone() *Todo {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.RemindAt != nil {
		r := *t.RemindAt
		c.RemindAt = &r
	}
	return &c
}

// NewTodo holds the caller-supplied fields for creating a todo.
// The repository assigns ID, CreatedAt and UpdatedAt.
type NewTodo struct {
	UserID      string
	Title       string
	Description *string
	Status      TodoStatus
	RemindAt    *time.Time
}

// TodoPatch is a partial update. Nil fields are left unchanged.
// ID, UserID and CreatedAt are not patchable.
type TodoPatch struct {
	Title       *string
	Description *string
	Status      *TodoStatus
	RemindAt    *time.Time

	// IfStatus makes the update conditional: it is applied only while the
	// stored status still equals *IfStatus, otherwise the repository returns
	// ErrStatusChanged and leaves the record untouched.
	IfStatus *TodoStatus
}

// Permits reports whether the patch's precondition holds for t.
func (p TodoPatch) Permits(t *Todo) bool {
	return p.IfStatus == nil || *p.IfStatus == t.Status
}

// Apply writes the non-nil patch fields onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.RemindAt != nil {
		r := *p.RemindAt
		t.RemindAt = &r
	}
}

// User is an account that owns todos.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string

	// RefreshTokenHash is the SHA-256 of the only refresh token currently
	// accepted for this user; empty after logout or before the first login.
	RefreshTokenHash string
	CreatedAt        time.Time
}

// NextUpdatedAt returns the UpdatedAt value for a mutation happening at now.
// It guarantees strict monotonicity even when the clock has not advanced
// since the previous write.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}
