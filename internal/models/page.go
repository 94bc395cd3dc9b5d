package models

// Page is the paginated envelope returned by list endpoints of the RFQ backend.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// Pagination mirrors the paging fields of a Page without its items.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// PaginationOf extracts the paging fields from p.
func PaginationOf[T any](p *Page[T]) Pagination {
	if p == nil {
		return Pagination{}
	}
	return Pagination{Page: p.Page, PageSize: p.PageSize, Total: p.Total, Pages: p.Pages}
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.Pages }
