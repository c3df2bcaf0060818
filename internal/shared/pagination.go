package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Window returns the slice bounds for the current page over total items.
// Pages past the end yield an empty window.
func (p Pagination) Window() (start, end int) {
	if p.Page <= 0 || p.PerPage <= 0 || p.Total <= 0 {
		return 0, 0
	}
	if p.Page-1 >= p.TotalPages {
		return p.Total, p.Total
	}
	start = (p.Page - 1) * p.PerPage
	if p.PerPage >= p.Total-start {
		return start, p.Total
	}
	return start, start + p.PerPage
}
