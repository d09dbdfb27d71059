package event

import (
	"crypto/sha1"
	"fmt"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"

	"github.com/mkaelin/limmat-events/internal/normalize"
)

// DefaultDescriptionLimit is the rune count descriptions are truncated to
// when the source context does not set its own limit.
const DefaultDescriptionLimit = 2000

// Raw is a single event as one extraction strategy saw it, before
// normalization. Fields other than Title and Start may be empty.
type Raw struct {
	Title       string
	Description string
	Start       time.Time
	End         *time.Time
	Venue       string
	Address     string
	Organizer   string
	PriceText   string
	URL         string
	ImageURL    string
	SourceID    string // source-local identifier, when the page or API exposes one
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Canonical is the normalized, persisted form of an event.
type Canonical struct {
	ID            uuid.UUID  `json:"id"`
	Source        string     `json:"source"`
	SourceEventID string     `json:"source_event_id,omitempty"`
	Title         string     `json:"title"`
	TitleNorm     string     `json:"title_norm"`
	Description   string     `json:"description,omitempty"`
	Language      string     `json:"language,omitempty"`
	Category      string     `json:"category,omitempty"`
	Start         time.Time  `json:"start"`
	End           *time.Time `json:"end,omitempty"`
	Venue         string     `json:"venue,omitempty"`
	Street        string     `json:"street,omitempty"`
	PostalCode    string     `json:"postal_code,omitempty"`
	City          string     `json:"city,omitempty"`
	CountryCode   string     `json:"country_code,omitempty"`
	Organizer     string     `json:"organizer,omitempty"`
	Lat           *float64   `json:"lat,omitempty"`
	Lon           *float64   `json:"lon,omitempty"`
	PriceMin      *float64   `json:"price_min,omitempty"`
	PriceMax      *float64   `json:"price_max,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	URL           string     `json:"url,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Hash          string     `json:"hash"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Context carries the per-source facts canonicalization needs.
type Context struct {
	Source           string
	Language         string
	CountryCode      string
	DescriptionLimit int // 0 means DefaultDescriptionLimit
}

// GenerateHash creates the deterministic identity hash for an event.
// Inputs are the normalized title, the start instant rounded down to the
// minute in UTC, and coordinates rounded to four decimal places. Nil
// coordinates contribute empty components, so the same event keeps the
// same hash before and after geocoding only if both runs agree on the
// coordinates.
func GenerateHash(titleNorm string, start time.Time, lat, lon *float64) string {
	latPart := ""
	lonPart := ""
	if lat != nil {
		latPart = strconv.FormatFloat(*lat, 'f', 4, 64)
	}
	if lon != nil {
		lonPart = strconv.FormatFloat(*lon, 'f', 4, 64)
	}
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%s|%s",
		titleNorm,
		start.UTC().Truncate(time.Minute).Format(time.RFC3339),
		latPart,
		lonPart,
	)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GenerateHash recomputes the identity hash from the event's current fields.
func (e *Canonical) GenerateHash() string {
	return GenerateHash(e.TitleNorm, e.Start, e.Lat, e.Lon)
}

// NormalizeTitle lowercases a title and collapses internal whitespace.
func NormalizeTitle(title string) string {
	return strings.ToLower(normalize.CollapseSpace(title))
}

// Canonicalize builds a Canonical event from a raw extraction result.
// Returns false when the raw event is unusable (empty title or zero start).
// Coordinates and category are attached as given; the identity hash is
// computed from the final field values. ID and timestamps are left for the
// store to assign on upsert.
func Canonicalize(raw Raw, ctx Context, coords *Coordinates, category string) (*Canonical, bool) {
	title := normalize.CollapseSpace(raw.Title)
	if title == "" || raw.Start.IsZero() {
		return nil, false
	}

	limit := ctx.DescriptionLimit
	if limit <= 0 {
		limit = DefaultDescriptionLimit
	}

	addr := normalize.SplitAddress(raw.Address)
	price := normalize.ParsePrice(raw.PriceText)

	ev := &Canonical{
		Source:        ctx.Source,
		SourceEventID: strings.TrimSpace(raw.SourceID),
		Title:         title,
		TitleNorm:     NormalizeTitle(title),
		Description:   normalize.Truncate(describe(raw.Description), limit),
		Language:      ctx.Language,
		Category:      category,
		Start:         raw.Start,
		End:           raw.End,
		Venue:         normalize.CollapseSpace(raw.Venue),
		Street:        addr.Street,
		PostalCode:    addr.PostalCode,
		City:          addr.City,
		CountryCode:   ctx.CountryCode,
		Organizer:     normalize.CollapseSpace(raw.Organizer),
		PriceMin:      price.Min,
		PriceMax:      price.Max,
		Currency:      price.Currency,
		URL:           strings.TrimSpace(raw.URL),
		ImageURL:      strings.TrimSpace(raw.ImageURL),
	}
	if coords != nil {
		lat, lon := coords.Lat, coords.Lon
		ev.Lat = &lat
		ev.Lon = &lon
	}
	ev.Hash = ev.GenerateHash()
	return ev, true
}

// describe converts an HTML description to markdown-ish plain text. Plain
// text passes through with outer whitespace trimmed.
func describe(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsRune(s, '<') {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		// Keep the tagless remainder rather than dropping the field.
		return normalize.CollapseSpace(normalize.StripTags(s))
	}
	return strings.TrimSpace(md)
}
