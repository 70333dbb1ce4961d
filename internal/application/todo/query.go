package todo

import (
	"math"

	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/ptr"
)

// Default pagination values applied when the request leaves them unset.
const (
	DefaultLimit = 10
	DefaultPage  = 1
)

// BuildQuery translates a raw list request into a storage-agnostic query.
//
// Limit and page are not clamped; bounding them is the transport's job.
// A request that yields a negative offset, an offset that overflows int or a
// non-positive page size is rejected with domain.ErrInvalidPagination rather
// than coerced.
func BuildQuery(req domain.ListTodosRequest) (domain.TodoQuery, error) {
	limit := ptr.Deref(req.Limit, DefaultLimit)
	page := ptr.Deref(req.Page, DefaultPage)

	if limit <= 0 || page < 1 || page-1 > math.MaxInt/limit {
		return domain.TodoQuery{}, domain.ErrInvalidPagination
	}

	q := domain.TodoQuery{
		Skip: (page - 1) * limit,
		Take: limit,
	}

	if req.SearchVal != "" && req.SearchBy != "" {
		q.Filter = &domain.QueryFilter{
			Field:    req.SearchBy,
			Contains: req.SearchVal,
		}
	}

	if req.SortBy != "" {
		q.Sort = &domain.QuerySort{
			Field:     req.SortBy,
			Direction: domain.NewSortDirection(req.SortVal),
		}
	}

	return q, nil
}
