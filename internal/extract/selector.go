package extract

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/normalize"
)

// Selector extracts events with CSS selector bundles. Configured
// selectors (family defaults plus per-source overrides) are tried
// first; when they yield nothing the generic fallback families run in
// order of decreasing confidence.
type Selector struct{}

func (Selector) Name() string { return MethodSelector }

func (s Selector) Extract(ctx context.Context, in Input) (Result, error) {
	if in.Doc == nil {
		return Result{Method: MethodSelector}, nil
	}

	var configured *Bundle
	if fam, ok := families[in.Opts.Family]; ok {
		configured = fam.bundle
	}
	configured = configured.merged(in.Opts.Selectors)
	if configured != nil {
		if events := extractWithBundle(in, configured); len(events) > 0 {
			return Result{Events: events, Method: MethodSelector, Confidence: ConfidenceConfigured}, nil
		}
	}

	for _, fam := range genericFamilies {
		if events := extractWithBundle(in, fam.bundle); len(events) > 0 {
			return Result{Events: events, Method: MethodSelector, Confidence: fam.confidence}, nil
		}
	}
	return Result{Method: MethodSelector}, nil
}

// extractWithBundle applies one bundle to the document. Container
// selectors are alternatives: the first one whose matches produce
// events wins, so a bundle never mixes rows from different layouts.
func extractWithBundle(in Input, b *Bundle) []event.Raw {
	for _, containerSel := range b.Container {
		var events []event.Raw
		in.Doc.Find(containerSel).Each(func(_ int, sel *goquery.Selection) {
			if raw, ok := eventFromSelection(in, b, sel); ok {
				events = append(events, raw)
			}
		})
		if len(events) > 0 {
			return dedupeRaw(events)
		}
	}
	return nil
}

// eventFromSelection reads one event out of a container element. A
// container without a title or a parseable date is skipped, which is
// also what filters table headers and navigation items out of the
// generic families.
func eventFromSelection(in Input, b *Bundle, sel *goquery.Selection) (event.Raw, bool) {
	title := firstText(sel, b.Title)
	if title == "" {
		return event.Raw{}, false
	}
	start, end, ok := normalize.ParseDateRangeAt(firstDateText(sel, b.Date), in.Opts.DateHint, in.now())
	if !ok {
		return event.Raw{}, false
	}
	raw := event.Raw{
		Title:       title,
		Start:       start,
		End:         end,
		Venue:       firstText(sel, b.Venue),
		Address:     firstText(sel, b.Location),
		Description: firstText(sel, b.Description),
		Organizer:   firstText(sel, b.Organizer),
		PriceText:   firstText(sel, b.Price),
		URL:         resolveURL(in.PageURL, firstAttr(sel, b.Link, "href")),
		ImageURL:    resolveURL(in.PageURL, firstAttr(sel, b.Image, "src")),
	}
	if id, ok := sel.Attr("data-event-id"); ok {
		raw.SourceID = id
	} else if id, ok := sel.Attr("data-id"); ok {
		raw.SourceID = id
	}
	return raw, true
}

// firstText returns the collapsed text of the first selector
// alternative that matches a non-empty element.
func firstText(scope *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if text := normalize.CollapseSpace(scope.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstDateText prefers machine-readable datetime and content
// attributes over element text, including on a time element nested
// inside the matched wrapper.
func firstDateText(scope *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		found := scope.Find(s).First()
		if found.Length() == 0 {
			continue
		}
		for _, attr := range []string{"datetime", "content"} {
			if v, ok := found.Attr(attr); ok && normalize.CollapseSpace(v) != "" {
				return normalize.CollapseSpace(v)
			}
		}
		if v, ok := found.Find("time").First().Attr("datetime"); ok && normalize.CollapseSpace(v) != "" {
			return normalize.CollapseSpace(v)
		}
		if text := normalize.CollapseSpace(found.Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(scope *goquery.Selection, selectors []string, attr string) string {
	for _, s := range selectors {
		if v, ok := scope.Find(s).First().Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}
