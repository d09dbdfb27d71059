package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mkaelin/limmat-events/internal/event"
)

func TestWritePDF(t *testing.T) {
	events := []*event.Canonical{
		{
			Title:       "Herbstmarkt",
			Description: "Marktstände mit regionalen Produkten und Festwirtschaft.",
			Start:       time.Date(2026, time.September, 12, 9, 0, 0, 0, time.Local),
			Venue:       "Dorfplatz",
			City:        "Schlieren",
			Category:    "market",
		},
		{
			Title: "Führung durchs Ortsmuseum",
			Start: time.Date(2026, time.September, 12, 14, 0, 0, 0, time.Local),
			City:  "Dietikon",
		},
		{
			Title: "Banntag",
			Start: time.Date(2026, time.September, 19, 0, 0, 0, 0, time.Local),
			City:  "Urdorf",
		},
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, events, "Veranstaltungen im Limmattal"); err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Error("output does not look like a PDF")
	}
	if buf.Len() < 1000 {
		t.Errorf("PDF suspiciously small: %d bytes", buf.Len())
	}
}

func TestWritePDFEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, nil, "Veranstaltungen"); err != nil {
		t.Fatalf("WritePDF failed on empty list: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Error("output does not look like a PDF")
	}
}

func TestGermanDate(t *testing.T) {
	got := germanDate(time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC))
	if got != "Samstag, 12. September 2026" {
		t.Errorf("germanDate = %q", got)
	}
}
