package extract

import "strings"

// Bundle is a set of CSS selectors describing where event fields live
// on a listing page. Every field holds alternatives tried in order.
// Bundles come from three places: per-source overrides in sources.yaml,
// the family registry below, and the generic fallback families.
type Bundle struct {
	Container   []string `yaml:"container"`
	Title       []string `yaml:"title"`
	Date        []string `yaml:"date"`
	Venue       []string `yaml:"venue"`
	Location    []string `yaml:"location"`
	Description []string `yaml:"description"`
	Organizer   []string `yaml:"organizer"`
	Price       []string `yaml:"price"`
	Link        []string `yaml:"link"`
	Image       []string `yaml:"image"`
}

// merged overlays non-empty fields of over onto b. Either side may be
// nil.
func (b *Bundle) merged(over *Bundle) *Bundle {
	if b == nil {
		return over
	}
	if over == nil {
		return b
	}
	out := *b
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	pick(&out.Container, over.Container)
	pick(&out.Title, over.Title)
	pick(&out.Date, over.Date)
	pick(&out.Venue, over.Venue)
	pick(&out.Location, over.Location)
	pick(&out.Description, over.Description)
	pick(&out.Organizer, over.Organizer)
	pick(&out.Price, over.Price)
	pick(&out.Link, over.Link)
	pick(&out.Image, over.Image)
	return &out
}

// family describes one publisher platform: the selector bundle its
// pages share and, where the platform exposes one, a rule deriving its
// JSON endpoint from the listing URL.
type family struct {
	bundle   *Bundle
	endpoint func(pageURL string) string
}

// families maps the family tags accepted in sources.yaml to their
// platform defaults. The municipal CMS products dominating the region
// are all here; a handful of sources run plain WordPress with The
// Events Calendar.
var families = map[string]family{
	// OneGov Cloud serves the same agenda as JSON when /json is
	// appended to the listing path.
	"onegov": {
		bundle: &Bundle{
			Container:   []string{".occurrences .occurrence", "ul.occurrences li"},
			Title:       []string{".occurrence-title a", ".occurrence-title", "h3 a"},
			Date:        []string{".occurrence-date", "time", ".date"},
			Location:    []string{".occurrence-location", ".location"},
			Description: []string{".occurrence-lead", ".lead"},
			Link:        []string{".occurrence-title a", "h3 a", "a"},
		},
		endpoint: func(pageURL string) string {
			return strings.TrimRight(pageURL, "/") + "/json"
		},
	},
	"govis": {
		bundle: &Bundle{
			Container:   []string{"table.eventStruct tr", ".eventContainer .event", "table.anlaesse tr"},
			Title:       []string{"td.eventTitle a", "td.eventTitle", ".eventTitle", "td:nth-child(2) a"},
			Date:        []string{"td.eventDate", ".eventDate", "td:first-child"},
			Location:    []string{"td.eventLocation", ".eventLocation", "td:nth-child(3)"},
			Link:        []string{"td.eventTitle a", "a"},
		},
	},
	"i-web": {
		bundle: &Bundle{
			Container:   []string{".anlassliste .anlass", "ul.anlaesse li", ".icms-event"},
			Title:       []string{".anlass-titel a", ".anlass-titel", "h3 a", "h3"},
			Date:        []string{".anlass-datum", ".datum", "time"},
			Location:    []string{".anlass-ort", ".ort"},
			Description: []string{".anlass-text", ".beschreibung"},
			Link:        []string{".anlass-titel a", "a"},
		},
	},
	"localcities": {
		bundle: &Bundle{
			Container:   []string{".event-card", "[data-event-id]"},
			Title:       []string{".event-card__title", "h3"},
			Date:        []string{".event-card__date", "time"},
			Location:    []string{".event-card__location"},
			Description: []string{".event-card__teaser"},
			Link:        []string{"a"},
			Image:       []string{"img"},
		},
	},
	"wordpress": {
		bundle: &Bundle{
			Container:   []string{".tribe-events-calendar-list__event", "article.tribe-events-calendar-list__event", ".type-tribe_events"},
			Title:       []string{".tribe-events-calendar-list__event-title a", ".tribe-events-calendar-list__event-title", "h3 a"},
			Date:        []string{"time", ".tribe-events-calendar-list__event-datetime"},
			Venue:       []string{".tribe-events-calendar-list__event-venue-title"},
			Location:    []string{".tribe-events-calendar-list__event-venue-address", ".tribe-events-calendar-list__event-venue"},
			Description: []string{".tribe-events-calendar-list__event-description", ".entry-summary"},
			Price:       []string{".tribe-events-c-small-cta__price"},
			Link:        []string{".tribe-events-calendar-list__event-title a", "a"},
			Image:       []string{".tribe-events-calendar-list__event-featured-image img", "img"},
		},
	},
}

// genericFamily is a best-effort bundle tried when no configured
// selectors produced events. Confidence drops with how loose the
// pattern is.
type genericFamily struct {
	name       string
	confidence float64
	bundle     *Bundle
}

var genericFamilies = []genericFamily{
	{
		name:       "semantic",
		confidence: 0.85,
		bundle: &Bundle{
			Container:   []string{"article.event", ".event-item", ".veranstaltung", ".agenda-item", "li.event", ".event"},
			Title:       []string{"h1", "h2", "h3", ".title", ".event-title", "a"},
			Date:        []string{"time", ".date", ".datum", ".event-date"},
			Venue:       []string{".venue"},
			Location:    []string{".location", ".ort", ".address", ".adresse"},
			Description: []string{".description", ".teaser", "p"},
			Link:        []string{"a"},
			Image:       []string{"img"},
		},
	},
	{
		name:       "table",
		confidence: 0.75,
		bundle: &Bundle{
			Container: []string{"table tr"},
			Title:     []string{"td:nth-child(2) a", "td:nth-child(2)", "td a"},
			Date:      []string{"td:first-child time", "td.date", "td:first-child"},
			Location:  []string{"td:nth-child(3)"},
			Link:      []string{"a"},
		},
	},
	{
		name:       "list",
		confidence: 0.65,
		bundle: &Bundle{
			Container: []string{"ul li", "ol li"},
			Title:     []string{"a", "strong", "b"},
			Date:      []string{"time", ".date", "span"},
			Link:      []string{"a"},
		},
	},
	{
		name:       "card",
		confidence: 0.6,
		bundle: &Bundle{
			Container:   []string{".card", ".teaser", "article", ".box"},
			Title:       []string{"h2", "h3", "h4", ".card-title", "a"},
			Date:        []string{"time", ".date", ".card-date", "span"},
			Description: []string{".card-text", "p"},
			Link:        []string{"a"},
			Image:       []string{"img"},
		},
	},
}

// KnownFamily reports whether tag names a registered publisher family.
// Sources with unknown tags still run, they just start from the generic
// bundles.
func KnownFamily(tag string) bool {
	_, ok := families[tag]
	return ok
}

// FamilyNames lists the registered family tags, for config validation
// messages.
func FamilyNames() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	return names
}

// FamilyEndpoint derives the JSON endpoint for a family from its
// listing URL. Families without an API return "".
func FamilyEndpoint(tag, pageURL string) string {
	fam, ok := families[tag]
	if !ok || fam.endpoint == nil || pageURL == "" {
		return ""
	}
	return fam.endpoint(pageURL)
}
