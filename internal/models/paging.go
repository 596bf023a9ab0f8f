package models

// PagedResult is one server-sliced page of a list
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageIndex  int `json:"pageIndex"`
	PageSize   int `json:"pageSize"`
}

// TotalPages returns the number of pages implied by TotalCount
func (p PagedResult[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether a page exists after this one
func (p PagedResult[T]) HasNext() bool {
	return (p.PageIndex+1)*p.PageSize < p.TotalCount
}

// PastEnd reports whether the page starts beyond the last item
func (p PagedResult[T]) PastEnd() bool {
	return p.PageIndex*p.PageSize >= p.TotalCount && p.TotalCount > 0
}

// PageRequest is the slice requested from a list endpoint
type PageRequest struct {
	Page int
	Size int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps the request into the accepted range
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r
}
