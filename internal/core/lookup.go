package core

import (
	"slices"
	"strings"

	"github.com/jmylchreest/toasty/internal/model"
)

// LookupByID finds an event by its ULID or a unique prefix of it
// (case-insensitive). It returns nil if none or several match.
func LookupByID(events []model.Event, id string) *model.Event {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return nil
	}

	var found *model.Event
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
		if strings.HasPrefix(events[i].ID, id) {
			if found != nil {
				return nil
			}
			found = &events[i]
		}
	}
	return found
}

// LookupByIndex finds an event by its 1-based index.
func LookupByIndex(events []model.Event, index int) *model.Event {
	idx := index - 1
	if idx < 0 || idx >= len(events) {
		return nil
	}
	return &events[idx]
}

// Search returns events whose message or title contains term, ignoring case.
func Search(events []model.Event, term string) []model.Event {
	if term == "" {
		return events
	}

	term = strings.ToLower(term)
	var result []model.Event
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Message), term) ||
			strings.Contains(strings.ToLower(e.Title), term) {
			result = append(result, e)
		}
	}
	return result
}

// Categories returns the distinct dedup categories of suppressed events,
// sorted case-insensitively.
func Categories(events []model.Event) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		if e.Kind == model.KindSuppressed && e.Category != "" && !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
