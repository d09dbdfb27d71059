// Package filter narrows event lists by date window, category, city and
// distance from a reference point, and knows which event titles are
// blocked outright. Every criterion fails open: an event missing the
// data a criterion needs is kept, not dropped.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkaelin/limmat-events/internal/event"
)

// Filter represents event filtering criteria. The zero value matches
// every event.
type Filter struct {
	// Date window, inclusive on both ends.
	From *time.Time
	To   *time.Time

	// Only events that have not ended yet.
	UpcomingOnly bool

	// Category filtering, exact match against Canonical.Category.
	Categories []string

	// City filtering, case-insensitive substring match.
	Cities []string

	// Distance filtering. Origin must be set for MaxDistanceKm to apply.
	MaxDistanceKm float64
	Origin        *event.Coordinates
}

// IsEmpty reports whether the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.From == nil &&
		f.To == nil &&
		!f.UpcomingOnly &&
		len(f.Categories) == 0 &&
		len(f.Cities) == 0 &&
		(f.MaxDistanceKm <= 0 || f.Origin == nil)
}

// Matches checks an event against all active criteria.
func (f *Filter) Matches(ev *event.Canonical) bool {
	return f.matchesAt(ev, time.Now())
}

func (f *Filter) matchesAt(ev *event.Canonical, now time.Time) bool {
	if f.IsEmpty() {
		return true
	}

	if f.From != nil && ev.Start.Before(*f.From) {
		return false
	}
	if f.To != nil && ev.Start.After(*f.To) {
		return false
	}
	if f.UpcomingOnly {
		end := ev.Start
		if ev.End != nil {
			end = *ev.End
		}
		if end.Before(now) {
			return false
		}
	}

	if len(f.Categories) > 0 {
		matched := false
		for _, c := range f.Categories {
			if strings.EqualFold(ev.Category, c) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Cities) > 0 {
		matched := false
		cityLower := strings.ToLower(ev.City)
		for _, city := range f.Cities {
			if strings.Contains(cityLower, strings.ToLower(city)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.MaxDistanceKm > 0 && f.Origin != nil {
		if !WithinRadius(ev, *f.Origin, f.MaxDistanceKm) {
			return false
		}
	}

	return true
}

// Apply returns the events matching all criteria. An empty filter returns
// the input unchanged.
func (f *Filter) Apply(events []*event.Canonical) []*event.Canonical {
	if f.IsEmpty() {
		return events
	}
	now := time.Now()
	var out []*event.Canonical
	for _, ev := range events {
		if f.matchesAt(ev, now) {
			out = append(out, ev)
		}
	}
	return out
}

// String returns a human-readable description of the active criteria.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "no active filters"
	}
	var parts []string
	if f.From != nil {
		parts = append(parts, fmt.Sprintf("from %s", f.From.Format("2006-01-02")))
	}
	if f.To != nil {
		parts = append(parts, fmt.Sprintf("to %s", f.To.Format("2006-01-02")))
	}
	if f.UpcomingOnly {
		parts = append(parts, "upcoming only")
	}
	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("categories %s", strings.Join(f.Categories, ", ")))
	}
	if len(f.Cities) > 0 {
		parts = append(parts, fmt.Sprintf("cities %s", strings.Join(f.Cities, ", ")))
	}
	if f.MaxDistanceKm > 0 && f.Origin != nil {
		parts = append(parts, fmt.Sprintf("within %.0f km", f.MaxDistanceKm))
	}
	return strings.Join(parts, " | ")
}
