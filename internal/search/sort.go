package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/i474232898/cities-weather/internal/geo"
)

// Column is a sortable city field.
type Column string

const (
	ColumnNone     Column = ""
	ColumnName     Column = "name"
	ColumnCountry  Column = "country"
	ColumnTimezone Column = "timezone"
)

// ParseColumn accepts name, country, timezone or the empty string.
func ParseColumn(s string) (Column, error) {
	switch c := Column(strings.ToLower(strings.TrimSpace(s))); c {
	case ColumnNone, ColumnName, ColumnCountry, ColumnTimezone:
		return c, nil
	default:
		return ColumnNone, &ValidationError{Field: "sort", Value: s, Message: fmt.Sprintf("unknown sort column %q", s)}
	}
}

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts asc, desc or the empty string (asc).
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return Asc, &ValidationError{Field: "order", Value: s, Message: fmt.Sprintf("unknown sort order %q", s)}
	}
}

// SortState is the active sort. The zero value keeps input order.
type SortState struct {
	Column Column `json:"column"`
	Order  Order  `json:"order"`
}

// Toggle returns the state after the user picks column: the same column
// flips the order, a new column starts ascending.
func (s SortState) Toggle(column Column) SortState {
	if column == ColumnNone {
		return SortState{}
	}
	if s.Column == column {
		if s.Order == Desc {
			return SortState{Column: column, Order: Asc}
		}
		return SortState{Column: column, Order: Desc}
	}
	return SortState{Column: column, Order: Asc}
}

func keyFor(c geo.City, col Column) string {
	switch col {
	case ColumnCountry:
		return fold(c.Country)
	case ColumnTimezone:
		return fold(c.Timezone)
	default:
		return fold(c.Name)
	}
}

// Sort returns a sorted copy of cities. Comparison is case-insensitive on
// the chosen column and stable, so equal keys keep collection order.
// Desc is the exact reverse of Asc.
func Sort(cities []geo.City, s SortState) []geo.City {
	out := make([]geo.City, len(cities))
	copy(out, cities)
	if s.Column == ColumnNone || len(out) < 2 {
		return out
	}

	keys := make([]string, len(out))
	idx := make([]int, len(out))
	for i, c := range out {
		keys[i] = keyFor(c, s.Column)
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return keys[idx[i]] < keys[idx[j]]
	})
	if s.Order == Desc {
		for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	sorted := make([]geo.City, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}
