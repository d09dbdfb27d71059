package cli

import (
	"testing"
	"time"

	"github.com/mkaelin/limmat-events/internal/event"
)

func TestSortEvents(t *testing.T) {
	base := time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC)
	mk := func(title, city string, start time.Time) *event.Canonical {
		return &event.Canonical{Title: title, City: city, Start: start}
	}

	tests := []struct {
		name      string
		order     SortOrder
		events    []*event.Canonical
		wantFirst string
		wantLast  string
	}{
		{
			name:  "by date",
			order: SortByDate,
			events: []*event.Canonical{
				mk("Weihnachtsmarkt", "Dietikon", base.AddDate(0, 3, 0)),
				mk("Herbstmarkt", "Schlieren", base),
				mk("Neujahrskonzert", "Urdorf", base.AddDate(0, 4, 0)),
			},
			wantFirst: "Herbstmarkt",
			wantLast:  "Neujahrskonzert",
		},
		{
			name:  "by city",
			order: SortByCity,
			events: []*event.Canonical{
				mk("Turnfest", "Urdorf", base),
				mk("Banntag", "Dietikon", base),
				mk("Waldlauf", "", base),
			},
			wantFirst: "Banntag",
			wantLast:  "Waldlauf",
		},
		{
			name:  "by title case-insensitive",
			order: SortByTitle,
			events: []*event.Canonical{
				mk("zunftessen", "Schlieren", base),
				mk("Adventsfenster", "Schlieren", base),
				mk("Maibummel", "Schlieren", base),
			},
			wantFirst: "Adventsfenster",
			wantLast:  "zunftessen",
		},
		{
			name:  "same start falls back to title",
			order: SortByDate,
			events: []*event.Canonical{
				mk("Zunftessen", "Schlieren", base),
				mk("Banntag", "Schlieren", base),
			},
			wantFirst: "Banntag",
			wantLast:  "Zunftessen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sortEvents(tt.events, tt.order)
			if got := tt.events[0].Title; got != tt.wantFirst {
				t.Errorf("first = %q, want %q", got, tt.wantFirst)
			}
			if got := tt.events[len(tt.events)-1].Title; got != tt.wantLast {
				t.Errorf("last = %q, want %q", got, tt.wantLast)
			}
		})
	}
}
