package listing

// Result is one rendered page of a list screen.
type Result[T any] struct {
	Items        []T
	Query        Query
	TotalRecords int
	Filtered     int
	Page         int
	TotalPages   int
	PageSize     int
	Pages        []int
	Facets       []string
}

// Empty is true when the upstream returned no rows at all (or the fetch failed).
func (r Result[T]) Empty() bool { return r.TotalRecords == 0 }

// NoMatches is true when rows exist but the search or facet excluded all of them.
func (r Result[T]) NoMatches() bool { return r.TotalRecords > 0 && r.Filtered == 0 }

func (r Result[T]) HasPrev() bool { return r.Page > 1 }
func (r Result[T]) HasNext() bool { return r.Page < r.TotalPages }

// First and Last are the 1-based row numbers shown in "Showing x to y of z".
func (r Result[T]) First() int {
	if r.Filtered == 0 {
		return 0
	}
	return (r.Page-1)*r.PageSize + 1
}

func (r Result[T]) Last() int { return (r.Page-1)*r.PageSize + len(r.Items) }

// PageLink is the query string for page n with the rest of the state kept.
func (r Result[T]) PageLink(n int) string {
	q := r.Query
	q.Page = n
	return "?" + q.Values().Encode()
}

// SortLink is the query string after clicking the header for field.
func (r Result[T]) SortLink(field string) string {
	q := r.Query
	q.Dir = Toggle(r.Query, field)
	q.Sort = field
	q.Page = 1
	return "?" + q.Values().Encode()
}

// SortIndicator is the arrow shown next to an active column header.
func (r Result[T]) SortIndicator(field string) string {
	if r.Query.Sort != field {
		return ""
	}
	if r.Query.Dir == Desc {
		return "↓"
	}
	return "↑"
}
