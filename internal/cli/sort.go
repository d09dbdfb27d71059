package cli

import (
	"sort"
	"strings"

	"github.com/mkaelin/limmat-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByCity  SortOrder = "city"
	SortByTitle SortOrder = "title"
)

// sortEvents sorts a slice of events based on the specified sort order
func sortEvents(events []*event.Canonical, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.Slice(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByCity:
		sort.Slice(events, func(i, j int) bool {
			ci, cj := strings.ToLower(events[i].City), strings.ToLower(events[j].City)
			if ci != cj {
				// Events without a city sort last
				if ci == "" || cj == "" {
					return cj == ""
				}
				return ci < cj
			}
			return compareByDate(events[i], events[j])
		})
	case SortByTitle:
		sort.Slice(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Title), strings.ToLower(events[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate compares two events by start time, falling back to the
// title for events starting at the same instant.
func compareByDate(i, j *event.Canonical) bool {
	if !i.Start.Equal(j.Start) {
		return i.Start.Before(j.Start)
	}
	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
