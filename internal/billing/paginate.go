package billing

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 10

// Pagination describes the page returned by Paginate.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns the items of the requested page. Pages outside
// [1, TotalPages] are clamped to the nearest bound; there is no wraparound.
// size <= 0 selects DefaultPageSize.
func Paginate[T any](items []T, page, size int) ([]T, Pagination) {
	if size <= 0 {
		size = DefaultPageSize
	}
	n := len(items)
	totalPages := (n + size - 1) / size

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	p := Pagination{Page: page, PerPage: size, TotalItems: n, TotalPages: totalPages}

	start := (page - 1) * size
	if start >= n {
		return []T{}, p
	}
	end := start + size
	if end > n {
		end = n
	}
	return items[start:end], p
}
