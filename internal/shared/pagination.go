package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open [from, to) slice range for the page. An
// out-of-range page yields an empty range.
func (p Pagination) Bounds() (int, int) {
	from := (p.Page - 1) * p.PerPage
	if from >= p.Total {
		return 0, 0
	}
	to := from + p.PerPage
	if to > p.Total {
		to = p.Total
	}
	return from, to
}
