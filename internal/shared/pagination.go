package shared

import (
	"net/url"
	"strconv"
)

// PageRequest is a parsed pagination query.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePageRequest reads page/limit query parameters with defaults and an
// upper bound on page size.
func ParsePageRequest(query url.Values) PageRequest {
	page, _ := strconv.Atoi(query.Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return PageRequest{Page: page, Limit: limit}
}
