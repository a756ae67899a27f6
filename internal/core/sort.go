package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jmylchreest/toasty/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByKind      SortField = "kind"
	SortByType      SortField = "type"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns newest first.
func DefaultSortOptions() SortOptions {
	return SortOptions{Field: SortByTimestamp, Order: SortDesc}
}

// Sort sorts events in place. Ties keep their relative order.
func Sort(events []model.Event, opts SortOptions) {
	compare := func(a, b model.Event) int {
		var c int
		switch opts.Field {
		case SortByKind:
			c = strings.Compare(string(a.Kind), string(b.Kind))
		case SortByType:
			c = strings.Compare(a.Type, b.Type)
		default:
			c = cmp.Compare(a.Timestamp, b.Timestamp)
		}
		if opts.Order == SortDesc {
			return -c
		}
		return c
	}
	slices.SortStableFunc(events, compare)
}

// ParseSortField parses a sort field. Unknown values sort by timestamp.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kind", "k":
		return SortByKind
	case "type", "t":
		return SortByType
	default:
		return SortByTimestamp
	}
}

// ParseSortOrder parses a sort order. Unknown values sort descending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc
	default:
		return SortDesc
	}
}

// ParseSort parses "field" or "field:order".
func ParseSort(s string) SortOptions {
	field, order, _ := strings.Cut(s, ":")
	opts := SortOptions{Field: ParseSortField(field), Order: SortDesc}
	if order != "" {
		opts.Order = ParseSortOrder(order)
	}
	return opts
}
