package views

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rohits-web03/otadash/internal/apperr"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Column exposes one field of T to filtering and sorting. Hidden columns
// take part in filtering but are not rendered as headers.
type Column[T any] struct {
	Key    string
	Label  string
	Value  func(T) any
	Hidden bool
}

// Spec describes a table over T.
type Spec[T any] struct {
	Name         string
	PageSize     int
	Columns      []Column[T]
	FilterKeys   []string // columns matched by the filter; empty means every column
	DefaultSort  string
	DefaultOrder Order
}

func (s Spec[T]) column(key string) (Column[T], bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Query is a request for one page.
type Query struct {
	Filter  string `json:"filter"`
	SortKey string `json:"sort"`
	Order   Order  `json:"order"`
	Page    int    `json:"page"`
}

// ColumnInfo describes a column and its sort state for rendering headers.
type ColumnInfo struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Sorted Order  `json:"sorted,omitempty"`
}

// Page is the visible window of a filtered and sorted collection.
type Page[T any] struct {
	Items      []T          `json:"items"`
	Columns    []ColumnInfo `json:"columns"`
	Filter     string       `json:"filter"`
	SortKey    string       `json:"sort"`
	Order      Order        `json:"order"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
	HasPrev    bool         `json:"hasPrev"`
	HasNext    bool         `json:"hasNext"`
	Label      string       `json:"label"`
}

// TotalPages is ceil(n/size), 0 for an empty collection.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage keeps page within [1, totalPages]. With no pages it is 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Filter keeps items where any filterable column contains needle, case-insensitively.
func Filter[T any](spec Spec[T], items []T, needle string) []T {
	needle = strings.ToLower(needle)
	if needle == "" {
		return slices.Clone(items)
	}
	cols := spec.Columns
	if len(spec.FilterKeys) > 0 {
		cols = cols[:0:0]
		for _, k := range spec.FilterKeys {
			if c, ok := spec.column(k); ok {
				cols = append(cols, c)
			}
		}
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, c := range cols {
			if strings.Contains(strings.ToLower(Stringify(c.Value(item))), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Sort returns a sorted copy of items. nil values sort last in either direction.
func Sort[T any](spec Spec[T], items []T, key string, order Order) ([]T, error) {
	col, ok := spec.column(key)
	if !ok {
		return nil, apperr.NewValidationError(fmt.Sprintf("Unknown sort column %q", key), nil)
	}
	out := slices.Clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := deref(col.Value(out[i]))
		b, bok := deref(col.Value(out[j]))
		switch {
		case !aok:
			return false
		case !bok:
			return true
		}
		c := Compare(a, b)
		if order == Desc {
			c = -c
		}
		return c < 0
	})
	return out, nil
}

// Apply filters, sorts and paginates items.
func Apply[T any](spec Spec[T], items []T, q Query) (Page[T], error) {
	if q.SortKey == "" {
		q.SortKey = spec.DefaultSort
		if q.Order == "" {
			q.Order = spec.DefaultOrder
		}
	}
	if q.Order == "" {
		q.Order = Asc
	}
	if q.Order != Asc && q.Order != Desc {
		return Page[T]{}, apperr.NewValidationError(fmt.Sprintf("Unknown sort order %q", q.Order), nil)
	}

	filtered := Filter(spec, items, q.Filter)
	if q.SortKey != "" {
		var err error
		if filtered, err = Sort(spec, filtered, q.SortKey, q.Order); err != nil {
			return Page[T]{}, err
		}
	}

	total := len(filtered)
	pages := TotalPages(total, spec.PageSize)
	page := ClampPage(q.Page, pages)

	start := (page - 1) * spec.PageSize
	end := min(start+spec.PageSize, total)
	visible := []T{}
	if start < end {
		visible = filtered[start:end]
	}

	cols := make([]ColumnInfo, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		if c.Hidden {
			continue
		}
		info := ColumnInfo{Key: c.Key, Label: c.Label}
		if c.Key == q.SortKey {
			info.Sorted = q.Order
		}
		cols = append(cols, info)
	}

	return Page[T]{
		Items:      visible,
		Columns:    cols,
		Filter:     q.Filter,
		SortKey:    q.SortKey,
		Order:      q.Order,
		Page:       page,
		PageSize:   spec.PageSize,
		TotalPages: pages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < pages,
		Label:      fmt.Sprintf("Showing page %d of %d", page, pages),
	}, nil
}
