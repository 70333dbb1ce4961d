package domain

// TodoStatus represents the lifecycle state of a todo.
// Value object - immutable string enum.
type TodoStatus string

const (
	TodoStatusPending     TodoStatus = "PENDING"
	TodoStatusDone        TodoStatus = "DONE"
	TodoStatusReminderDue TodoStatus = "REMINDER_DUE"
)

// SortDirection is the ordering applied to a sort field.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Canonical todo field names accepted in query filters and sort clauses.
// Repositories map these to their own column names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldRemindAt    = "remindAt"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

// FilterableFields lists fields that support case-insensitive substring search.
func FilterableFields() []string {
	return []string{FieldTitle, FieldDescription}
}

// SortableFields lists fields that can be used in a sort clause.
func SortableFields() []string {
	return []string{FieldTitle, FieldStatus, FieldRemindAt, FieldCreatedAt, FieldUpdatedAt}
}
