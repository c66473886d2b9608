package helpers

import (
	"net/http"
	"strconv"

	"guestbook/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size (alias limit) from the query string.
// Non-numeric or non-positive values fall back to the defaults; page_size is capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	size := positiveInt(q.Get("page_size"), 0)
	if size == 0 {
		size = positiveInt(q.Get("limit"), DefaultPageSize)
	}
	return domain.PaginationParams{
		Page:     positiveInt(q.Get("page"), 1),
		PageSize: min(size, MaxPageSize),
	}
}

func positiveInt(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// PaginationMeta is returned next to every paginated list.
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func NewPaginationMeta(p domain.PaginationParams, total int) PaginationMeta {
	size := p.Limit()
	pages := (total + size - 1) / size
	page := max(p.Page, 1)
	return PaginationMeta{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}
