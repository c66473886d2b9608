package domain

// DefaultPageLimit applies when a caller leaves PageSize unset.
const DefaultPageLimit = 20

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Limit is the page size, falling back to DefaultPageLimit.
func (p PaginationParams) Limit() int {
	if p.PageSize < 1 {
		return DefaultPageLimit
	}
	return p.PageSize
}

// Offset skips the rows of all earlier pages; pages are 1-based.
func (p PaginationParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}
