package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Plausibility window for parsed event dates. Candidates outside it are
// treated as mis-parses and skipped, so scanning can move on to the next
// date-shaped substring.
const (
	maxPastDays   = 365
	maxFutureDays = 730
)

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var fallbackLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006.01.02",
	"2 January 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
}

var weekdays = map[string]bool{
	"montag": true, "dienstag": true, "mittwoch": true, "donnerstag": true,
	"freitag": true, "samstag": true, "sonntag": true,
	"mo": true, "di": true, "mi": true, "do": true, "fr": true, "sa": true, "so": true,
	"lundi": true, "mardi": true, "mercredi": true, "jeudi": true,
	"vendredi": true, "samedi": true, "dimanche": true,
	"lun": true, "mar": true, "mer": true, "jeu": true, "ven": true, "sam": true, "dim": true,
}

var monthNames = map[string]time.Month{
	"januar": time.January, "jan": time.January,
	"februar": time.February, "feb": time.February,
	"märz": time.March, "maerz": time.March, "mär": time.March,
	"april": time.April, "apr": time.April,
	"mai": time.May,
	"juni": time.June, "jun": time.June,
	"juli": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October,
	"november": time.November, "nov": time.November,
	"dezember": time.December, "dez": time.December,

	"janvier": time.January, "janv": time.January,
	"février": time.February, "fevrier": time.February, "févr": time.February,
	"mars": time.March,
	"avril": time.April, "avr": time.April,
	"juin": time.June,
	"juillet": time.July, "juil": time.July,
	"août": time.August, "aout": time.August,
	"septembre": time.September,
	"octobre": time.October,
	"novembre": time.November,
	"décembre": time.December, "decembre": time.December, "déc": time.December,
}

var (
	numericDateRe   = regexp.MustCompile(`(\d{1,2})\.\s?(\d{1,2})\.\s?(\d{4}|\d{2})\b`)
	monthNameDateRe = regexp.MustCompile(`(\d{1,2})(?:\.|er)?\s+(\p{L}+)\.?,?\s*(\d{4})?`)
	colonClockRe    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	uhrClockRe      = regexp.MustCompile(`\b(\d{1,2})(?:[.:](\d{2}))?\s*[Uu]hr\b`)
	frenchClockRe   = regexp.MustCompile(`\b(\d{1,2})[hH](\d{2})?\b`)
	dayDashRe       = regexp.MustCompile(`^(\d{1,2})\.?\s*[–—-]\s*(\d.*)$`)
	bareDayRe       = regexp.MustCompile(`^(\d{1,2})\.?$`)
)

var rangeSeparators = []string{" bis ", " – ", " — ", " au ", " - "}

// ParseDate parses free text into a start instant. It tries, in order: an
// optional per-source layout hint, ISO 8601, numeric dd.mm.yyyy and
// dd.mm.yy, German and French month names with an optional leading
// weekday, and a few common fallback layouts. A clock time near the date
// is folded in when present. Returns false when nothing plausible parses.
func ParseDate(text, hint string) (time.Time, bool) {
	return ParseDateAt(text, hint, time.Now())
}

// ParseDateAt is ParseDate evaluated against a fixed now, which anchors
// the plausibility window and the year assumed for yearless dates.
func ParseDateAt(text, hint string, now time.Time) (time.Time, bool) {
	s := stripWeekday(CollapseSpace(text))
	if s == "" {
		return time.Time{}, false
	}

	if hint != "" {
		if t, err := time.Parse(hint, s); err == nil && inWindow(t, now) {
			return t, true
		}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil && inWindow(t, now) {
			return t, true
		}
	}
	if t, ok := parseNumeric(s, now); ok {
		return t, true
	}
	if t, ok := parseMonthName(s, now); ok {
		return t, true
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil && inWindow(t, now) {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateRange parses spans like "15. – 17. September 2025" or
// "15.09.2025 bis 17.09.2025". The end is nil for single dates. A bare
// day before the separator borrows month, year and time from the end.
func ParseDateRange(text, hint string) (time.Time, *time.Time, bool) {
	return ParseDateRangeAt(text, hint, time.Now())
}

// ParseDateRangeAt is ParseDateRange evaluated against a fixed now.
func ParseDateRangeAt(text, hint string, now time.Time) (time.Time, *time.Time, bool) {
	s := CollapseSpace(text)
	if left, right, found := splitRange(s); found {
		if end, ok := ParseDateAt(right, hint, now); ok {
			if start, ok := ParseDateAt(left, hint, now); ok {
				if end.After(start) {
					return start, &end, true
				}
				return start, nil, true
			}
			if m := bareDayRe.FindStringSubmatch(left); m != nil {
				day := atoi(m[1])
				start := time.Date(end.Year(), end.Month(), day, end.Hour(), end.Minute(), 0, 0, time.UTC)
				if start.Day() == day && end.After(start) {
					return start, &end, true
				}
			}
			return end, nil, true
		}
	}
	t, ok := ParseDateAt(s, hint, now)
	return t, nil, ok
}

// FindClock looks for a clock time anywhere in s: "19:30", "19.30 Uhr",
// "14 Uhr" or the French "19h30".
func FindClock(s string) (hour, minute int, ok bool) {
	if m := colonClockRe.FindStringSubmatch(s); m != nil {
		h, min := atoi(m[1]), atoi(m[2])
		if h <= 23 && min <= 59 {
			return h, min, true
		}
	}
	if m := uhrClockRe.FindStringSubmatch(s); m != nil {
		h, min := atoi(m[1]), atoi(m[2])
		if h <= 23 && min <= 59 {
			return h, min, true
		}
	}
	if m := frenchClockRe.FindStringSubmatch(s); m != nil {
		h, min := atoi(m[1]), atoi(m[2])
		if h <= 23 && min <= 59 {
			return h, min, true
		}
	}
	return 0, 0, false
}

func parseNumeric(s string, now time.Time) (time.Time, bool) {
	for _, m := range numericDateRe.FindAllStringSubmatchIndex(s, -1) {
		day := atoi(s[m[2]:m[3]])
		mon := atoi(s[m[4]:m[5]])
		yearStr := s[m[6]:m[7]]
		if day < 1 || day > 31 || mon < 1 || mon > 12 {
			continue
		}
		year := atoi(yearStr)
		if len(yearStr) == 2 {
			year = foldCentury(year, now)
		}
		hour, min := clockNear(s, m[0], m[1])
		t := time.Date(year, time.Month(mon), day, hour, min, 0, 0, time.UTC)
		if t.Day() != day || !inWindow(t, now) {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

func parseMonthName(s string, now time.Time) (time.Time, bool) {
	for _, m := range monthNameDateRe.FindAllStringSubmatchIndex(s, -1) {
		day := atoi(s[m[2]:m[3]])
		mon, known := monthNames[strings.ToLower(s[m[4]:m[5]])]
		if !known || day < 1 || day > 31 {
			continue
		}
		year := now.Year()
		if m[6] >= 0 {
			year = atoi(s[m[6]:m[7]])
		}
		hour, min := clockNear(s, m[0], m[1])
		t := time.Date(year, mon, day, hour, min, 0, 0, time.UTC)
		if t.Day() != day || !inWindow(t, now) {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// clockNear finds a clock time outside the date match itself, preferring
// text after the date. Searching the full string would read the "15.09"
// of "15.09.2025" as a quarter past three.
func clockNear(s string, start, end int) (int, int) {
	if h, m, ok := FindClock(s[end:]); ok {
		return h, m
	}
	if h, m, ok := FindClock(s[:start]); ok {
		return h, m
	}
	return 0, 0
}

// stripWeekday drops a leading weekday token like "Samstag," or "sa.".
func stripWeekday(s string) string {
	fields := strings.SplitN(s, " ", 2)
	if len(fields) != 2 {
		return s
	}
	tok := strings.ToLower(strings.Trim(fields[0], ".,:"))
	if weekdays[tok] {
		return strings.TrimLeft(fields[1], " ,")
	}
	return s
}

func splitRange(s string) (left, right string, found bool) {
	for _, sep := range rangeSeparators {
		if i := strings.Index(s, sep); i > 0 {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
		}
	}
	if m := dayDashRe.FindStringSubmatch(s); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// foldCentury resolves a two-digit year to whichever century lands nearer
// to now.
func foldCentury(yy int, now time.Time) int {
	y20 := 2000 + yy
	y19 := 1900 + yy
	if abs(y20-now.Year()) <= abs(y19-now.Year()) {
		return y20
	}
	return y19
}

func inWindow(t, now time.Time) bool {
	return t.After(now.AddDate(0, 0, -maxPastDays)) && t.Before(now.AddDate(0, 0, maxFutureDays))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
