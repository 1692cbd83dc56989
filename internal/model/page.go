package model

import (
	"errors"
	"strings"
)

// DefaultPageLimit is the page size used when a query does not name one.
const DefaultPageLimit = 10

// PageQuery fully determines which launch records are requested.
type PageQuery struct {
	Term        string `json:"q"`
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	SuccessOnly bool   `json:"success_only,omitempty"`
}

// Normalize trims the search term and fills unset page/limit with defaults.
func (q PageQuery) Normalize() PageQuery {
	q.Term = strings.TrimSpace(q.Term)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	return q
}

// Validate reports whether the query satisfies page >= 1 and limit > 0.
func (q PageQuery) Validate() error {
	var errs []error
	if q.Page < 1 {
		errs = append(errs, errors.New("page: must be >= 1"))
	}
	if q.Limit <= 0 {
		errs = append(errs, errors.New("limit: must be > 0"))
	}
	return errors.Join(errs...)
}

// PageResult is one page of launch records plus the remote total.
// Pagination facts are derived from TotalDocs, Page and Limit on demand.
type PageResult struct {
	Items     []Launch `json:"items"`
	TotalDocs int      `json:"total_docs"`
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
}

// TotalPages is ceil(TotalDocs / Limit).
func (r PageResult) TotalPages() int {
	return TotalPages(r.TotalDocs, r.Limit)
}

func (r PageResult) HasNextPage() bool {
	return r.Page < r.TotalPages()
}

func (r PageResult) HasPrevPage() bool {
	return r.Page > 1
}

// TotalPages returns ceil(totalDocs / limit), or 0 when limit is not positive.
func TotalPages(totalDocs, limit int) int {
	if limit <= 0 || totalDocs <= 0 {
		return 0
	}
	return (totalDocs + limit - 1) / limit
}
