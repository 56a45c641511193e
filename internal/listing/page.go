package listing

import (
	"net/url"
	"strconv"
	"strings"

	"inkwell/internal/domain"
)

// MaxPageSize caps how many rows a single page may request.
const MaxPageSize = 100

// PageRequest is an immutable page/size pair, already coerced into bounds.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest coerces page to >= 1 and clamps size into [1, MaxPageSize].
// A size of 0 takes the resource default.
func NewPageRequest(page, size, defaultSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	if size == 0 {
		size = defaultSize
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}
}

// ParsePageRequest reads page plus limit/size from query parameters.
// Out-of-range numbers are coerced, but non-numeric text is rejected.
func ParsePageRequest(q url.Values, defaultSize int) (PageRequest, error) {
	page, err := intParam(q, "page", 1)
	if err != nil {
		return PageRequest{}, err
	}
	sizeKey := "limit"
	if q.Get("limit") == "" && q.Get("size") != "" {
		sizeKey = "size"
	}
	size, err := intParam(q, sizeKey, 0)
	if err != nil {
		return PageRequest{}, err
	}
	return NewPageRequest(page, size, defaultSize), nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationError{Field: key, Msg: "must be an integer", Err: err}
	}
	return n, nil
}

// Skip is the row offset implied by the request. It is intentionally not
// clamped to the total; a page past the end simply yields zero items.
func (r PageRequest) Skip() int {
	return (r.Page - 1) * r.Size
}

// PageMeta is the navigation metadata computed from a request and a total.
type PageMeta struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Paginate computes page metadata for a total row count.
func Paginate(r PageRequest, total int) PageMeta {
	if total < 0 {
		total = 0
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + r.Size - 1) / r.Size
	}
	return PageMeta{
		Total:       total,
		CurrentPage: r.Page,
		TotalPages:  totalPages,
		HasNext:     r.Page < totalPages,
		HasPrev:     total > 0 && r.Page > 1,
	}
}

// PageLink re-serializes the original query with only the page number
// replaced, so next/prev links keep the caller's filter context.
func PageLink(q url.Values, page int) string {
	out := url.Values{}
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	out.Set("page", strconv.Itoa(page))
	return "?" + out.Encode()
}

// PageResult is one page of items plus its metadata.
type PageResult[T any] struct {
	Items        []T    `json:"items"`
	Total        int    `json:"total"`
	CurrentPage  int    `json:"currentPage"`
	TotalPages   int    `json:"totalPages"`
	HasNext      bool   `json:"hasNext"`
	HasPrev      bool   `json:"hasPrev"`
	NextPageLink string `json:"nextPageLink,omitempty"`
	PrevPageLink string `json:"prevPageLink,omitempty"`
}

// AttachLinks fills the nav links from the original query parameters.
func (r *PageResult[T]) AttachLinks(q url.Values) {
	if r.HasNext {
		r.NextPageLink = PageLink(q, r.CurrentPage+1)
	}
	if r.HasPrev {
		r.PrevPageLink = PageLink(q, r.CurrentPage-1)
	}
}
