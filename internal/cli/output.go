package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mkaelin/limmat-events/internal/calendar"
	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/extract"
	"github.com/mkaelin/limmat-events/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// WriteEvents writes a catalog listing in the specified format
func WriteEvents(w io.Writer, events []*event.Canonical, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, events)
	case FormatICS:
		_, err := io.WriteString(w, calendar.Feed(events))
		return err
	case FormatText:
		return writeEventsText(w, events, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteReport writes a collection run report in the specified format
func WriteReport(w io.Writer, report *pipeline.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeReportText(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeEventsText outputs a catalog listing as human-readable text
func writeEventsText(w io.Writer, events []*event.Canonical, verbose bool) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for _, ev := range events {
		fmt.Fprintf(w, "%s  %s\n", startLabel(ev), ev.Title)
		if line := placeLine(ev); line != "" {
			fmt.Fprintf(w, "                  %s\n", line)
		}
		if verbose {
			if ev.Organizer != "" {
				fmt.Fprintf(w, "                  Organizer: %s\n", ev.Organizer)
			}
			if price := priceLabel(ev); price != "" {
				fmt.Fprintf(w, "                  Price: %s\n", price)
			}
			if ev.URL != "" {
				fmt.Fprintf(w, "                  Link: %s\n", ev.URL)
			}
			fmt.Fprintf(w, "                  ID: %s\n", ev.ID)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
	return nil
}

// writeReportText outputs a run report as human-readable text
func writeReportText(w io.Writer, report *pipeline.Report) error {
	for _, sr := range report.Sources {
		if sr.Method == extract.MethodNone || sr.Found == 0 {
			fmt.Fprintf(w, "%s: no events extracted\n", sr.Source)
		} else {
			fmt.Fprintf(w, "%s: %d events via %s (confidence %.2f), %d new, %d updated, %d skipped\n",
				sr.Source, sr.Found, sr.Method, sr.Confidence, sr.Created, sr.Updated, sr.Skipped)
		}
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
	}

	if len(report.NewEvents) == 0 {
		fmt.Fprintln(w, "\nNo new events found.")
	} else {
		fmt.Fprintf(w, "\nNew events (%d):\n", len(report.NewEvents))
		for _, ev := range report.NewEvents {
			if ev.City != "" {
				fmt.Fprintf(w, "  NEW: %s  %s (%s)\n", startLabel(ev), ev.Title, ev.City)
			} else {
				fmt.Fprintf(w, "  NEW: %s  %s\n", startLabel(ev), ev.Title)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d found, %d new, %d updated, %d skipped across %d sources\n",
		report.TotalFound(), report.TotalCreated(), report.TotalUpdated(), report.TotalSkipped(), len(report.Sources))
	return nil
}

// startLabel renders the start column. All-day events carry no clock
// but keep the column width so titles stay aligned.
func startLabel(ev *event.Canonical) string {
	if ev.Start.Hour() == 0 && ev.Start.Minute() == 0 {
		return ev.Start.Format("02.01.2006") + "      "
	}
	return ev.Start.Format("02.01.2006 15:04")
}

// placeLine joins venue, city and category into one detail line.
func placeLine(ev *event.Canonical) string {
	var parts []string
	if ev.Venue != "" {
		parts = append(parts, ev.Venue)
	}
	if ev.City != "" {
		parts = append(parts, ev.City)
	}
	line := strings.Join(parts, ", ")
	if ev.Category != "" {
		if line != "" {
			return fmt.Sprintf("%s [%s]", line, ev.Category)
		}
		return fmt.Sprintf("[%s]", ev.Category)
	}
	return line
}

// priceLabel renders the parsed price range for verbose listings.
func priceLabel(ev *event.Canonical) string {
	if ev.PriceMin == nil {
		return ""
	}
	if *ev.PriceMin == 0 && (ev.PriceMax == nil || *ev.PriceMax == 0) {
		return "Eintritt frei"
	}
	currency := ev.Currency
	if currency == "" {
		currency = "CHF"
	}
	if ev.PriceMax != nil && *ev.PriceMax != *ev.PriceMin {
		return fmt.Sprintf("%s %s-%s", currency, amount(*ev.PriceMin), amount(*ev.PriceMax))
	}
	return fmt.Sprintf("%s %s", currency, amount(*ev.PriceMin))
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
