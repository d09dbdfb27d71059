package filter

import "strings"

// Municipal calendars mix real events with administrative appointments
// and waste collection dates. Titles containing any of these are never
// persisted.
var blockedTitleWords = []string{
	"gemeindeversammlung",
	"gemeinderatssitzung",
	"einwohnerratssitzung",
	"parlamentssitzung",
	"urnenabstimmung",
	"abstimmungssonntag",
	"urnengang",
	"sperrgut",
	"papiersammlung",
	"kartonsammlung",
	"grünabfuhr",
	"häckseldienst",
	"altmetallsammlung",
	"schalteröffnung",
	"assemblée communale",
	"votation",
}

// Blocked reports whether an event title is on the blocklist.
func Blocked(title string) bool {
	lower := strings.ToLower(title)
	for _, word := range blockedTitleWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
