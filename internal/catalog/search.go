// Package catalog holds the pure event-catalog rules: search, ordering,
// membership toggles, form validation and the fixed display locale.
package catalog

import (
	"strings"

	"eventbuddy/internal/domain"
)

// SearchFilter returns the events whose title contains query, ignoring case.
// An empty query returns events as given. Input order is preserved.
func SearchFilter(events []*domain.Event, query string) []*domain.Event {
	if query == "" {
		return events
	}
	needle := strings.ToLower(query)
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Browse sorts events by datetime and then applies SearchFilter.
func Browse(events []*domain.Event, query string) []*domain.Event {
	return SearchFilter(SortByDatetimeAscending(events), query)
}
