package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mkaelin/limmat-events/internal/calendar"
	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/export"
)

func main() {
	// Create sample events
	lat, lon := 47.3964, 8.4474
	start := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)
	events := []*event.Canonical{
		{
			ID:          uuid.New(),
			Source:      "schlieren.ch",
			Title:       "Herbstmarkt Schlieren",
			Description: "Markt mit regionalen Ständen auf dem Stadtplatz.",
			Start:       start,
			Venue:       "Stadtplatz",
			PostalCode:  "8952",
			City:        "Schlieren",
			Category:    "market",
			Lat:         &lat,
			Lon:         &lon,
			URL:         "https://www.schlieren.ch/anlaesse/herbstmarkt",
			Hash:        "sample-herbstmarkt",
		},
		{
			ID:       uuid.New(),
			Source:   "dietikon.ch",
			Title:    "Banntag",
			Start:    start.AddDate(0, 0, 8).Truncate(24 * time.Hour),
			City:     "Dietikon",
			Category: "tradition",
			Hash:     "sample-banntag",
		},
	}

	// Generate .ics file
	icsContent := calendar.Feed(events)

	// Write to file (owner read/write only for security)
	filename := "test-limmat-events.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	// Generate the PDF programme alongside
	pdfName := "test-limmat-events.pdf"
	pdfFile, err := os.Create(pdfName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
		os.Exit(1)
	}
	if err := export.WritePDF(pdfFile, events, "Veranstaltungen im Limmattal"); err != nil {
		pdfFile.Close()
		fmt.Fprintf(os.Stderr, "Error writing PDF: %v\n", err)
		os.Exit(1)
	}
	pdfFile.Close()

	fmt.Printf("✅ Generated calendar file: %s\n", filename)
	fmt.Printf("✅ Generated PDF programme: %s\n\n", pdfName)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
