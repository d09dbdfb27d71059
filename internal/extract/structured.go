package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/normalize"
)

// Structured reads schema.org Event markup: JSON-LD script blocks
// first, then HTML microdata. Publishers embedding either have done the
// field mapping for us, so confidence is near-certain.
type Structured struct{}

func (Structured) Name() string { return MethodStructured }

func (s Structured) Extract(ctx context.Context, in Input) (Result, error) {
	if in.Doc == nil {
		return Result{Method: MethodStructured}, nil
	}
	events := s.fromJSONLD(in)
	events = append(events, s.fromMicrodata(in)...)
	events = dedupeRaw(events)
	if len(events) == 0 {
		return Result{Method: MethodStructured}, nil
	}
	return Result{Events: events, Method: MethodStructured, Confidence: ConfidenceStructured}, nil
}

func (s Structured) fromJSONLD(in Input) []event.Raw {
	var events []event.Raw
	in.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			log.Debug().Err(err).Str("source", in.Opts.Source).Msg("skipping malformed json-ld block")
			return
		}
		walkJSONLD(payload, func(node map[string]any) {
			if raw, ok := eventFromJSONLD(node, in); ok {
				events = append(events, raw)
			}
		})
	})
	return events
}

// walkJSONLD visits every schema.org Event node in a JSON-LD payload,
// descending into arrays, @graph containers and ItemList elements.
func walkJSONLD(node any, visit func(map[string]any)) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			walkJSONLD(item, visit)
		}
	case map[string]any:
		if isEventType(v["@type"]) {
			visit(v)
		}
		for _, key := range []string{"@graph", "itemListElement", "item"} {
			if sub, ok := v[key]; ok {
				walkJSONLD(sub, visit)
			}
		}
	}
}

// eventTypes are the schema.org Event type and its common subtypes.
var eventTypes = map[string]bool{
	"event": true, "festival": true, "musicevent": true, "theaterevent": true,
	"socialevent": true, "sportsevent": true, "childrensevent": true,
	"exhibitionevent": true, "foodevent": true, "educationevent": true,
	"danceevent": true, "comedyevent": true, "screeningevent": true,
	"saleevent": true, "visualartsevent": true,
}

func isEventType(v any) bool {
	check := func(s string) bool {
		s = strings.ToLower(strings.TrimSpace(s))
		if i := strings.LastIndex(s, "/"); i >= 0 {
			s = s[i+1:]
		}
		return eventTypes[s]
	}
	switch t := v.(type) {
	case string:
		return check(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && check(s) {
				return true
			}
		}
	}
	return false
}

func eventFromJSONLD(node map[string]any, in Input) (event.Raw, bool) {
	title := normalize.CollapseSpace(jsonString(node["name"]))
	start, ok := normalize.ParseDateAt(jsonString(node["startDate"]), in.Opts.DateHint, in.now())
	if title == "" || !ok {
		return event.Raw{}, false
	}
	raw := event.Raw{
		Title:       title,
		Start:       start,
		Description: jsonString(node["description"]),
		URL:         resolveURL(in.PageURL, jsonString(node["url"])),
		ImageURL:    resolveURL(in.PageURL, jsonImage(node["image"])),
		Organizer:   jsonName(node["organizer"]),
		PriceText:   jsonOffers(node["offers"]),
		SourceID:    jsonString(node["@id"]),
	}
	if end, ok := normalize.ParseDateAt(jsonString(node["endDate"]), in.Opts.DateHint, in.now()); ok {
		raw.End = &end
	}
	raw.Venue, raw.Address = jsonLocation(node["location"])
	return raw, true
}

// jsonString extracts a trimmed string from a JSON-LD value that may be
// a string, a number, or a {"@value": ...} wrapper.
func jsonString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		return jsonString(t["@value"])
	}
	return ""
}

// jsonName pulls the name out of a Person/Organization value or an
// array of them.
func jsonName(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return jsonString(t["name"])
	case []any:
		for _, item := range t {
			if name := jsonName(item); name != "" {
				return name
			}
		}
	}
	return ""
}

// jsonImage handles the image shapes in the wild: a bare URL, an array
// of URLs, or an ImageObject.
func jsonImage(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if u := jsonImage(item); u != "" {
				return u
			}
		}
	case map[string]any:
		if u := jsonString(t["url"]); u != "" {
			return u
		}
		return jsonString(t["contentUrl"])
	}
	return ""
}

// jsonLocation splits a schema.org location into venue name and postal
// address text. A Place carries both; a bare string is treated as an
// address since that is what municipal sites put there.
func jsonLocation(v any) (venue, address string) {
	switch t := v.(type) {
	case string:
		return "", strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if ve, ad := jsonLocation(item); ve != "" || ad != "" {
				return ve, ad
			}
		}
	case map[string]any:
		venue = jsonString(t["name"])
		address = jsonAddress(t["address"])
		return venue, address
	}
	return "", ""
}

func jsonAddress(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		var parts []string
		if street := jsonString(t["streetAddress"]); street != "" {
			parts = append(parts, street)
		}
		locality := jsonString(t["addressLocality"])
		if postal := jsonString(t["postalCode"]); postal != "" {
			locality = strings.TrimSpace(postal + " " + locality)
		}
		if locality != "" {
			parts = append(parts, locality)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// jsonOffers renders an Offer (or the first usable one of an array)
// back into price text for the normalizer.
func jsonOffers(v any) string {
	switch t := v.(type) {
	case map[string]any:
		currency := jsonString(t["priceCurrency"])
		var amounts []string
		for _, key := range []string{"price", "lowPrice", "highPrice"} {
			if amount := jsonString(t[key]); amount != "" {
				amounts = append(amounts, amount)
			}
		}
		if len(amounts) == 0 {
			return ""
		}
		text := strings.Join(amounts, " – ")
		if currency != "" {
			text = currency + " " + text
		}
		return text
	case []any:
		for _, item := range t {
			if text := jsonOffers(item); text != "" {
				return text
			}
		}
	}
	return ""
}

func (s Structured) fromMicrodata(in Input) []event.Raw {
	var events []event.Raw
	in.Doc.Find("[itemscope][itemtype]").Each(func(_ int, sel *goquery.Selection) {
		itemType, _ := sel.Attr("itemtype")
		if !isEventType(itemType) {
			return
		}
		title := itemProp(sel, "name")
		start, ok := normalize.ParseDateAt(itemProp(sel, "startDate"), in.Opts.DateHint, in.now())
		if title == "" || !ok {
			return
		}
		raw := event.Raw{
			Title:       title,
			Start:       start,
			Description: itemProp(sel, "description"),
			URL:         resolveURL(in.PageURL, itemProp(sel, "url")),
			ImageURL:    resolveURL(in.PageURL, itemProp(sel, "image")),
			Organizer:   itemProp(sel, "organizer"),
			PriceText:   itemProp(sel, "price"),
		}
		if end, ok := normalize.ParseDateAt(itemProp(sel, "endDate"), in.Opts.DateHint, in.now()); ok {
			raw.End = &end
		}
		if loc := sel.Find(`[itemprop="location"]`).First(); loc.Length() > 0 {
			raw.Venue = itemProp(loc, "name")
			raw.Address = microdataAddress(loc)
			if raw.Venue == "" && raw.Address == "" {
				raw.Venue = normalize.CollapseSpace(loc.Text())
			}
		}
		events = append(events, raw)
	})
	return events
}

// itemProp reads a microdata property from the scope: the content or
// datetime attribute when present, src/href for media and links, the
// element text otherwise.
func itemProp(scope *goquery.Selection, name string) string {
	sel := scope.Find(fmt.Sprintf("[itemprop=%q]", name)).First()
	if sel.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "datetime", "src", "href"} {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return normalize.CollapseSpace(sel.Text())
}

func microdataAddress(loc *goquery.Selection) string {
	addr := loc.Find(`[itemprop="address"]`).First()
	if addr.Length() == 0 {
		return ""
	}
	var parts []string
	if street := itemProp(addr, "streetAddress"); street != "" {
		parts = append(parts, street)
	}
	locality := itemProp(addr, "addressLocality")
	if postal := itemProp(addr, "postalCode"); postal != "" {
		locality = strings.TrimSpace(postal + " " + locality)
	}
	if locality != "" {
		parts = append(parts, locality)
	}
	if len(parts) == 0 {
		return normalize.CollapseSpace(addr.Text())
	}
	return strings.Join(parts, ", ")
}
