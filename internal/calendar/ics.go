// Package calendar renders canonical events as iCalendar data.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkaelin/limmat-events/internal/event"
)

// DefaultDuration is assumed for events without an end time.
const DefaultDuration = 2 * time.Hour

// GenerateICS renders a single event as a standalone iCalendar file.
func GenerateICS(ev *event.Canonical) string {
	return Feed([]*event.Canonical{ev})
}

// Feed renders events as one iCalendar document, suitable for calendar
// subscriptions.
func Feed(events []*event.Canonical) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//limmat-events//limmat-events//DE\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	now := time.Now().UTC()
	for _, ev := range events {
		writeEvent(&ics, ev, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, ev *event.Canonical, stamp time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	fmt.Fprintf(ics, "UID:%s@limmat-events\r\n", ev.Hash)
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", formatICSTime(stamp))
	fmt.Fprintf(ics, "DTSTART:%s\r\n", formatICSTime(ev.Start))

	end := ev.Start.Add(DefaultDuration)
	if ev.End != nil && ev.End.After(ev.Start) {
		end = *ev.End
	}
	fmt.Fprintf(ics, "DTEND:%s\r\n", formatICSTime(end))

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(ev.Title))

	if ev.Description != "" {
		fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escapeICS(ev.Description))
	}
	if location := eventLocation(ev); location != "" {
		fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(location))
	}
	if ev.Lat != nil && ev.Lon != nil {
		fmt.Fprintf(ics, "GEO:%.6f;%.6f\r\n", *ev.Lat, *ev.Lon)
	}
	if ev.Category != "" {
		fmt.Fprintf(ics, "CATEGORIES:%s\r\n", escapeICS(strings.ToUpper(ev.Category)))
	}
	if ev.URL != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", ev.URL)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// eventLocation joins venue and address parts for the LOCATION
// property.
func eventLocation(ev *event.Canonical) string {
	var parts []string
	if ev.Venue != "" {
		parts = append(parts, ev.Venue)
	}
	if ev.Street != "" {
		parts = append(parts, ev.Street)
	}
	city := ev.City
	if ev.PostalCode != "" {
		city = strings.TrimSpace(ev.PostalCode + " " + city)
	}
	if city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

// formatICSTime formats a time.Time as an iCalendar datetime string.
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters according to RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
