// Package export renders stored events into distributable documents.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/normalize"
)

// pdfDescriptionLimit keeps listing entries to a few lines.
const pdfDescriptionLimit = 280

var germanWeekdays = [...]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// WritePDF renders events as a printable agenda, grouped by day. The
// events are expected in start order, as returned by the store.
func WritePDF(w io.Writer, events []*event.Canonical, title string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Stand: %s", germanDate(time.Now()))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	var day string
	for _, ev := range events {
		if heading := germanDate(ev.Start); heading != day {
			day = heading
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.CellFormat(0, 8, tr(heading), "", 1, "L", false, 0, "")
			pdf.Ln(1)
		}
		writePDFEvent(pdf, tr, ev)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return nil
}

func writePDFEvent(pdf *gofpdf.Fpdf, tr func(string) string, ev *event.Canonical) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	line := ev.Title
	if !isMidnight(ev.Start) {
		line = fmt.Sprintf("%s  %s", ev.Start.Format("15:04"), ev.Title)
	}
	pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")

	if where := eventPlace(ev); where != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 5, tr(where), "", 1, "L", false, 0, "")
	}
	if ev.Description != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 4.5, tr(normalize.Truncate(normalize.CollapseSpace(ev.Description), pdfDescriptionLimit)), "", "L", false)
	}
	pdf.Ln(3)
}

func eventPlace(ev *event.Canonical) string {
	switch {
	case ev.Venue != "" && ev.City != "":
		return fmt.Sprintf("%s, %s", ev.Venue, ev.City)
	case ev.Venue != "":
		return ev.Venue
	default:
		return ev.City
	}
}

// germanDate renders a date heading like "Samstag, 12. September 2026".
func germanDate(t time.Time) string {
	return fmt.Sprintf("%s, %d. %s %d", germanWeekdays[t.Weekday()], t.Day(), germanMonths[t.Month()-1], t.Year())
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0
}
