package extract

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dghubble/sling"

	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/normalize"
)

// API reads events from a source's JSON endpoint, either configured
// explicitly or derived from its publisher family. Municipal platforms
// expose wildly different field names, so items are decoded untyped and
// mapped by trying known key spellings.
type API struct {
	base *sling.Sling
}

// NewAPI returns the JSON API strategy. The client and user agent are
// shared with the page fetcher so all traffic looks the same to the
// publisher.
func NewAPI(client *http.Client, userAgent string) *API {
	return &API{base: sling.New().Client(client).Set("User-Agent", userAgent).Set("Accept", "application/json")}
}

func (a *API) Name() string { return MethodAPI }

func (a *API) Extract(ctx context.Context, in Input) (Result, error) {
	endpoint := in.Opts.APIEndpoint
	if endpoint == "" {
		endpoint = FamilyEndpoint(in.Opts.Family, in.PageURL)
	}
	if endpoint == "" {
		return Result{Method: MethodAPI}, nil
	}

	req, err := a.base.New().Get(endpoint).Request()
	if err != nil {
		return Result{Method: MethodAPI}, fmt.Errorf("building api request: %w", err)
	}
	var payload any
	resp, err := a.base.Do(req.WithContext(ctx), &payload, nil)
	if err != nil {
		return Result{Method: MethodAPI}, fmt.Errorf("querying %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Method: MethodAPI}, fmt.Errorf("querying %s: status %d", endpoint, resp.StatusCode)
	}

	var events []event.Raw
	for _, item := range itemsFromPayload(payload, 0) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if raw, ok := rawFromAPIItem(m, in); ok {
			events = append(events, raw)
		}
	}
	events = dedupeRaw(events)
	if len(events) == 0 {
		return Result{Method: MethodAPI}, nil
	}
	return Result{Events: events, Method: MethodAPI, Confidence: ConfidenceAPI}, nil
}

// envelopeKeys are the list-of-events wrappers seen across platform
// APIs.
var envelopeKeys = []string{"events", "items", "data", "results", "entries", "occurrences", "anlaesse"}

// itemsFromPayload finds the event list in a response that is either a
// bare array or an object wrapping one, possibly two levels deep.
func itemsFromPayload(payload any, depth int) []any {
	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		if depth >= 2 {
			return nil
		}
		for _, key := range envelopeKeys {
			if sub, ok := v[key]; ok {
				if items := itemsFromPayload(sub, depth+1); items != nil {
					return items
				}
			}
		}
	}
	return nil
}

func rawFromAPIItem(m map[string]any, in Input) (event.Raw, bool) {
	title := normalize.CollapseSpace(apiString(m, "title", "name", "titel", "bezeichnung", "subject"))
	startText := apiString(m, "startDate", "start_date", "start", "datum", "date", "begin", "from")
	start, ok := normalize.ParseDateAt(startText, in.Opts.DateHint, in.now())
	if title == "" || !ok {
		return event.Raw{}, false
	}
	raw := event.Raw{
		Title:       title,
		Start:       start,
		Description: apiString(m, "description", "text", "teaser", "lead", "beschreibung", "content"),
		Organizer:   apiString(m, "organizer", "organizer_name", "veranstalter"),
		PriceText:   apiString(m, "price", "preis", "cost", "tarif"),
		URL:         resolveURL(in.PageURL, apiString(m, "url", "link", "permalink", "website")),
		ImageURL:    resolveURL(in.PageURL, apiString(m, "image", "image_url", "imageUrl", "picture")),
		SourceID:    apiString(m, "id", "uuid", "guid", "event_id", "eventId"),
	}
	endText := apiString(m, "endDate", "end_date", "end", "until", "to")
	if end, ok := normalize.ParseDateAt(endText, in.Opts.DateHint, in.now()); ok {
		raw.End = &end
	}
	raw.Venue, raw.Address = apiLocation(m)
	return raw, true
}

// apiString returns the first present key rendered as a string. Numeric
// IDs and prices arrive as JSON numbers and are formatted back.
func apiString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// apiLocation digs venue and address out of an item. A bare string
// with digits is taken as an address, without as a venue name.
func apiLocation(m map[string]any) (venue, address string) {
	for _, key := range []string{"location", "venue", "place", "ort", "lokalitaet"} {
		switch v := m[key].(type) {
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if strings.ContainsAny(s, "0123456789") {
				return "", s
			}
			return s, ""
		case map[string]any:
			venue = apiString(v, "name", "title", "titel")
			street := apiString(v, "address", "street", "strasse", "adresse")
			locality := apiString(v, "city", "ort", "locality", "stadt")
			if postal := apiString(v, "zip", "plz", "postal_code", "postalCode"); postal != "" {
				locality = strings.TrimSpace(postal + " " + locality)
			}
			switch {
			case street != "" && locality != "":
				address = street + ", " + locality
			case street != "":
				address = street
			default:
				address = locality
			}
			return venue, address
		}
	}
	return "", ""
}
