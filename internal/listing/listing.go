// Package listing applies search, sort and pagination to a fully fetched
// collection. Every list screen runs its rows through a Spec.
package listing

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	DefaultPageSize = 8
	WindowSize      = 5
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Query is the screen state carried in the URL.
type Query struct {
	Search string
	Sort   string
	Dir    Direction
	Page   int
	Facet  string
}

// Values encodes q as URL query parameters, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
		v.Set("dir", string(q.Dir))
	}
	if q.Facet != "" {
		v.Set("facet", q.Facet)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// SortKey compares two rows on one field.
type SortKey[T any] struct {
	cmp func(col *collate.Collator, a, b T) int
}

// ByText orders by locale collation, case-insensitively.
func ByText[T any](f func(T) string) SortKey[T] {
	return SortKey[T]{cmp: func(col *collate.Collator, a, b T) int {
		return col.CompareString(f(a), f(b))
	}}
}

func ByNumber[T any](f func(T) float64) SortKey[T] {
	return SortKey[T]{cmp: func(_ *collate.Collator, a, b T) int {
		return cmp.Compare(f(a), f(b))
	}}
}

func ByTime[T any](f func(T) time.Time) SortKey[T] {
	return SortKey[T]{cmp: func(_ *collate.Collator, a, b T) int {
		return f(a).Compare(f(b))
	}}
}

// Spec describes one list screen.
type Spec[T any] struct {
	PageSize int
	// SearchIn returns the text fields the search term is matched against.
	SearchIn func(T) []string
	// Facet returns the row's value for the facet select; nil disables faceting.
	Facet       func(T) string
	Sorts       map[string]SortKey[T]
	DefaultSort string
	DefaultDir  Direction
}

func (s Spec[T]) pageSize() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

// Normalize replaces unknown sort fields and directions with the screen defaults.
func (s Spec[T]) Normalize(q Query) Query {
	if _, ok := s.Sorts[q.Sort]; !ok {
		q.Sort, q.Dir = s.DefaultSort, s.DefaultDir
	}
	if q.Dir != Asc && q.Dir != Desc {
		q.Dir = Asc
	}
	if q.Facet == "all" || s.Facet == nil {
		q.Facet = ""
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// Filter keeps rows where any search field contains term, ignoring case.
// The input is never modified; an empty term returns every row.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	if term == "" || fields == nil {
		return slices.Clone(items)
	}
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), needle) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy. Unknown fields leave the order unchanged.
func (s Spec[T]) Sort(items []T, field string, dir Direction) []T {
	out := slices.Clone(items)
	key, ok := s.Sorts[field]
	if !ok {
		return out
	}
	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b T) int {
		c := key.cmp(col, a, b)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Facets lists the distinct facet values present in items, sorted.
func (s Spec[T]) Facets(items []T) []string {
	if s.Facet == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, it := range items {
		v := s.Facet(it)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// Toggle is the direction after clicking field while current is active.
func Toggle(current Query, field string) Direction {
	if current.Sort == field {
		return current.Dir.Flip()
	}
	return Asc
}

// Apply runs facet, search, sort and pagination in that order.
func (s Spec[T]) Apply(all []T, q Query) Result[T] {
	q = s.Normalize(q)

	rows := all
	if q.Facet != "" {
		rows = make([]T, 0, len(all))
		for _, it := range all {
			if strings.EqualFold(s.Facet(it), q.Facet) {
				rows = append(rows, it)
			}
		}
	}
	rows = Filter(rows, q.Search, s.SearchIn)
	rows = s.Sort(rows, q.Sort, q.Dir)

	size := s.pageSize()
	start, end, page, total := Paginate(len(rows), q.Page, size)
	q.Page = page

	return Result[T]{
		Items:        rows[start:end],
		Query:        q,
		TotalRecords: len(all),
		Filtered:     len(rows),
		Page:         page,
		TotalPages:   total,
		PageSize:     size,
		Pages:        Window(page, total),
		Facets:       s.Facets(all),
	}
}

// Paginate clamps page to [1, max(1, totalPages)] and returns the slice bounds.
func Paginate(n, page, size int) (start, end, clamped, totalPages int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages = (n + size - 1) / size
	clamped = min(max(page, 1), max(totalPages, 1))
	start = min((clamped-1)*size, n)
	end = min(start+size, n)
	return start, end, clamped, totalPages
}

// Window returns up to WindowSize page numbers around page, kept inside [1, total].
func Window(page, total int) []int {
	if total <= 0 {
		return nil
	}
	start := max(1, page-2)
	end := min(total, start+WindowSize-1)
	if end-start < WindowSize-1 {
		start = max(1, end-WindowSize+1)
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}
