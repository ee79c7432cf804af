package common

import (
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// ParsePagination extracts limit and offset from query values, clamping limit to maxLimit.
// A page parameter is accepted as an alternative to offset.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	q := r.URL.Query()
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o > 0 {
		offset = o
	} else if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 1 {
		offset = (p - 1) * limit
	}
	return limit, offset
}
