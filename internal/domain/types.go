package domain

// ListTodosRequest is the raw pagination/search/sort request as received from
// a caller. Nil Limit or Page select the defaults; empty strings mean "absent".
//
// Common use cases:
//   - first page with defaults: ListTodosRequest{}
//   - "titles containing milk": SearchBy="title", SearchVal="milk"
//   - newest first: SortBy="createdAt", SortVal="desc"
type ListTodosRequest struct {
	Limit *int
	Page  *int

	SearchVal string
	SearchBy  string

	SortBy  string
	SortVal string
}

// QueryFilter selects records whose Field contains Contains, case-insensitively.
type QueryFilter struct {
	Field    string
	Contains string
}

// QuerySort orders records by Field in Direction.
type QuerySort struct {
	Field     string
	Direction SortDirection
}

// TodoQuery is the storage-agnostic description of one page of todos.
// It is built fresh for every call and never cached.
type TodoQuery struct {
	Skip int // Number of records to skip (for page N: (N-1) * Take)
	Take int // Page size

	Filter *QueryFilter // nil = no filter
	Sort   *QuerySort   // nil = repository-defined stable order
}

// ValidatePaging reports ErrInvalidPagination unless Skip is
// non-negative and Take positive.
func (q TodoQuery) ValidatePaging() error {
	if q.Skip < 0 || q.Take <= 0 {
		return ErrInvalidPagination
	}
	return nil
}

// TodoPage is one page of todos plus the total number of matching records.
type TodoPage struct {
	Data  []*Todo
	Count int // Total matching records for the owner under the same filter
}
