package notifier

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mkaelin/limmat-events/internal/event"
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name     string
		event    *event.Canonical
		contains []string
	}{
		{
			name: "complete event",
			event: &event.Canonical{
				Title: "Herbstmarkt",
				Start: time.Date(2026, time.September, 12, 9, 0, 0, 0, time.Local),
				City:  "Schlieren",
				URL:   "https://www.schlieren.ch/anlaesse/herbstmarkt",
			},
			contains: []string{
				"Herbstmarkt",
				"12.09.2026, 09:00",
				"Schlieren",
				"https://www.schlieren.ch/anlaesse/herbstmarkt",
				"#Limmattal",
				"📅",
				"📍",
			},
		},
		{
			name: "all-day event omits the clock",
			event: &event.Canonical{
				Title: "Banntag",
				Start: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.Local),
				City:  "Urdorf",
			},
			contains: []string{"Banntag", "01.05.2026", "Urdorf"},
		},
		{
			name: "event without city or url",
			event: &event.Canonical{
				Title: "Waldputzete",
				Start: time.Date(2026, time.April, 18, 8, 30, 0, 0, time.Local),
			},
			contains: []string{"Waldputzete", "18.04.2026, 08:30"},
		},
		{
			name: "very long title gets truncated",
			event: &event.Canonical{
				Title: strings.Repeat("Sehr lange Veranstaltungsreihe über die Geschichte des Limmattals ", 6),
				Start: time.Date(2026, time.June, 20, 19, 0, 0, 0, time.Local),
				City:  "Dietikon",
			},
			contains: []string{"..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatStatus(tt.event)

			if n := utf8.RuneCountInString(got); n > statusLimit {
				t.Errorf("formatStatus() length = %d runes, want <= %d", n, statusLimit)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatStatus() missing %q in status:\n%s", want, got)
				}
			}
		})
	}
}

func TestFormatStatusAllDayOmitsClock(t *testing.T) {
	got := formatStatus(&event.Canonical{
		Title: "Banntag",
		Start: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.Local),
	})
	if strings.Contains(got, "00:00") {
		t.Errorf("all-day status should omit midnight clock: %s", got)
	}
}

func TestDryRunNotifier(t *testing.T) {
	notifier := NewDryRunNotifier()

	events := []*event.Canonical{
		{Title: "Testanlass 1", Start: time.Date(2026, time.April, 1, 19, 0, 0, 0, time.Local), City: "Schlieren"},
		{Title: "Testanlass 2", Start: time.Date(2026, time.April, 2, 19, 0, 0, 0, time.Local), City: "Dietikon"},
	}

	if err := notifier.Notify(events); err != nil {
		t.Errorf("DryRunNotifier.Notify() error = %v, want nil", err)
	}
}
