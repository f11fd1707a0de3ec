// Package pagination is the shared slicing utility for paginated listings.
// It is a pure helper over the repositories' filtered count+list operations,
// not part of the order state machine.
package pagination

// Meta is the pagination metadata returned with every listing.
type Meta struct {
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
}

// Page is one page of results plus its metadata.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Normalize clamps page and limit to sane values: page >= 1,
// 1 <= limit <= 100, defaulting to page 1 and 10 items.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Offset converts a normalized page/limit pair into a slice offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// NewMeta builds the metadata for a listing of totalItems rows.
func NewMeta(totalItems, page, limit int) Meta {
	totalPages := totalItems / limit
	if totalItems%limit != 0 {
		totalPages++
	}
	return Meta{
		ItemsPerPage: limit,
		TotalItems:   totalItems,
		CurrentPage:  page,
		TotalPages:   totalPages,
	}
}

// NewPage assembles a page from the rows the repository returned.
func NewPage[T any](data []T, totalItems, page, limit int) Page[T] {
	if data == nil {
		data = make([]T, 0)
	}
	return Page[T]{Data: data, Meta: NewMeta(totalItems, page, limit)}
}
