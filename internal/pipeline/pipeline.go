package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/mkaelin/limmat-events/internal/classify"
	"github.com/mkaelin/limmat-events/internal/config"
	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/extract"
	"github.com/mkaelin/limmat-events/internal/fetch"
	"github.com/mkaelin/limmat-events/internal/filter"
	"github.com/mkaelin/limmat-events/internal/geocode"
	"github.com/mkaelin/limmat-events/internal/metrics"
	"github.com/mkaelin/limmat-events/internal/normalize"
	"github.com/mkaelin/limmat-events/internal/store"
)

// Geocoder resolves a location to coordinates. Satisfied by
// geocode.Client.
type Geocoder interface {
	FindCoordinates(ctx context.Context, address, venue, city string) (*geocode.Place, error)
}

// Persister stores canonical events. Satisfied by store.Store.
type Persister interface {
	Upsert(ev *event.Canonical) store.Result
}

// Runner executes collection runs over the configured sources.
type Runner struct {
	Fetch *fetch.Client
	Geo   Geocoder
	Store Persister
	Cfg   config.Config
}

// New wires a runner from its parts.
func New(fetcher *fetch.Client, geo Geocoder, persister Persister, cfg config.Config) *Runner {
	return &Runner{Fetch: fetcher, Geo: geo, Store: persister, Cfg: cfg}
}

// Run collects all sources in order and returns the run report. Each
// source gets its own timeout; a cancelled parent context ends the run
// after the current source.
func (r *Runner) Run(ctx context.Context, sources []config.Source) *Report {
	report := NewReport()
	strategies := extract.DefaultStrategies(extract.NewAPI(r.Fetch.HTTPClient(), r.Cfg.UserAgent))

	metrics.RunSources.Set(float64(len(sources)))
	log.Info().Str("run_id", report.RunID.String()).Int("sources", len(sources)).Msg("starting collection run")

	for i, src := range sources {
		if i > 0 && r.Cfg.SourceDelay > 0 {
			sleepCtx(ctx, r.Cfg.SourceDelay)
		}
		if ctx.Err() != nil {
			log.Warn().Msg("run cancelled")
			break
		}

		srcCtx := ctx
		cancel := func() {}
		if r.Cfg.SourceTimeout > 0 {
			srcCtx, cancel = context.WithTimeout(ctx, r.Cfg.SourceTimeout)
		}
		srcReport := r.processSource(srcCtx, src, strategies, report)
		cancel()

		metrics.SourceDuration.WithLabelValues(src.Name).Observe(srcReport.Duration.Seconds())
		report.Sources = append(report.Sources, srcReport)
	}

	report.FinishedAt = time.Now().UTC()
	metrics.Runs.WithLabelValues(report.Status(ctx)).Inc()
	log.Info().
		Str("run_id", report.RunID.String()).
		Int("found", report.TotalFound()).
		Int("created", report.TotalCreated()).
		Int("updated", report.TotalUpdated()).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("collection run finished")
	return report
}

func (r *Runner) processSource(ctx context.Context, src config.Source, strategies []extract.Strategy, report *Report) SourceReport {
	started := time.Now()
	rep := SourceReport{Source: src.Name, Method: extract.MethodNone}
	log.Info().Str("source", src.Name).Str("url", src.URL).Msg("collecting source")

	language := src.Language
	if language == "" {
		language = r.Cfg.DefaultLanguage
	}

	// A page fetch failure is not yet fatal: the API strategy can
	// still work from the endpoint alone.
	var doc *goquery.Document
	html, err := r.Fetch.Page(ctx, src.URL, src.RequiresRender)
	if err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("fetching page: %v", err))
		log.Warn().Err(err).Str("source", src.Name).Msg("page fetch failed")
	} else if doc, err = extract.NewDocument(html); err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("parsing page: %v", err))
	}

	in := extract.Input{
		Doc:     doc,
		PageURL: src.URL,
		Opts: extract.Options{
			Source:      src.Name,
			Language:    language,
			DateHint:    src.DateFormat,
			Family:      src.Family,
			Selectors:   src.Selectors,
			APIEndpoint: src.APIEndpoint,
		},
	}
	res, extractErrs := extract.Run(ctx, in, strategies)
	rep.Errors = append(rep.Errors, extractErrs...)
	rep.Method = res.Method
	rep.Confidence = res.Confidence
	rep.Found = len(res.Events)
	metrics.EventsExtracted.WithLabelValues(src.Name, res.Method).Add(float64(len(res.Events)))

	if len(res.Events) == 0 {
		log.Warn().Str("source", src.Name).Msg("no events extracted")
		rep.Duration = time.Since(started)
		return rep
	}
	log.Info().Str("source", src.Name).Str("method", res.Method).
		Float64("confidence", res.Confidence).Int("events", len(res.Events)).
		Msg("events extracted")

	if src.DetailPages {
		r.enrichFromDetailPages(ctx, src, res.Events)
	}

	evCtx := event.Context{
		Source:           src.Name,
		Language:         language,
		CountryCode:      r.Cfg.CountryCode,
		DescriptionLimit: r.Cfg.DescriptionLimit,
	}
	for _, raw := range res.Events {
		canonical, result, reason := r.processEvent(ctx, src, evCtx, raw)
		switch {
		case reason != "":
			rep.Skipped++
			metrics.EventsDropped.WithLabelValues(src.Name, reason).Inc()
		case result == store.ResultCreated:
			rep.Created++
			report.NewEvents = append(report.NewEvents, canonical)
		case result == store.ResultUpdated:
			rep.Updated++
		}
	}

	rep.Duration = time.Since(started)
	return rep
}

// processEvent turns one raw extraction into a stored canonical event.
// The returned reason is non-empty when the event was skipped.
func (r *Runner) processEvent(ctx context.Context, src config.Source, evCtx event.Context, raw event.Raw) (*event.Canonical, store.Result, string) {
	if filter.Blocked(raw.Title) {
		log.Debug().Str("source", src.Name).Str("title", raw.Title).Msg("title on blocklist")
		return nil, "", "blocklist"
	}

	var coords *event.Coordinates
	city := normalize.SplitAddress(raw.Address).City
	place, err := r.Geo.FindCoordinates(ctx, raw.Address, raw.Venue, city)
	if err != nil {
		log.Debug().Err(err).Str("source", src.Name).Str("title", raw.Title).Msg("geocoding failed")
	} else if place != nil {
		coords = &event.Coordinates{Lat: place.Lat, Lon: place.Lon}
	}

	category := classify.Classify(raw.Title, raw.Description)
	canonical, ok := event.Canonicalize(raw, evCtx, coords, category)
	if !ok {
		return nil, "", "invalid"
	}

	if src.FilterByDistance {
		origin := event.Coordinates{Lat: r.Cfg.ReferenceLat, Lon: r.Cfg.ReferenceLon}
		if !filter.WithinRadius(canonical, origin, r.Cfg.RadiusKm) {
			log.Debug().Str("source", src.Name).Str("title", raw.Title).Msg("outside collection radius")
			return nil, "", "distance"
		}
	}

	result := r.Store.Upsert(canonical)
	metrics.EventsPersisted.WithLabelValues(src.Name, string(result)).Inc()
	return canonical, result, ""
}

// enrichFromDetailPages follows event links and fills fields the
// listing page did not carry. Fetches are bounded per source and
// paced.
func (r *Runner) enrichFromDetailPages(ctx context.Context, src config.Source, events []event.Raw) {
	fetched := 0
	for i := range events {
		if fetched >= src.MaxDetailPages || ctx.Err() != nil {
			return
		}
		ev := &events[i]
		if ev.URL == "" || ev.URL == src.URL {
			continue
		}
		if fetched > 0 && r.Cfg.DetailDelay > 0 {
			sleepCtx(ctx, r.Cfg.DetailDelay)
		}
		fetched++

		html, err := r.Fetch.Page(ctx, ev.URL, false)
		if err != nil {
			log.Debug().Err(err).Str("url", ev.URL).Msg("detail page fetch failed")
			continue
		}
		doc, err := extract.NewDocument(html)
		if err != nil {
			continue
		}
		mergeDetail(ev, doc, extract.Input{Doc: doc, PageURL: ev.URL, Opts: extract.Options{
			Source:   src.Name,
			Language: src.Language,
			DateHint: src.DateFormat,
		}})
	}
}

// mergeDetail fills empty fields of ev from its detail page, reading
// structured markup when present and Open Graph metadata otherwise. A
// longer description replaces a shorter listing teaser.
func mergeDetail(ev *event.Raw, doc *goquery.Document, in extract.Input) {
	res, err := (extract.Structured{}).Extract(context.Background(), in)
	if err == nil && len(res.Events) > 0 {
		detail := res.Events[0]
		if len(detail.Description) > len(ev.Description) {
			ev.Description = detail.Description
		}
		if ev.End == nil {
			ev.End = detail.End
		}
		fillEmpty(&ev.Venue, detail.Venue)
		fillEmpty(&ev.Address, detail.Address)
		fillEmpty(&ev.Organizer, detail.Organizer)
		fillEmpty(&ev.PriceText, detail.PriceText)
		fillEmpty(&ev.ImageURL, detail.ImageURL)
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && len(desc) > len(ev.Description) {
		ev.Description = desc
	}
	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		fillEmpty(&ev.ImageURL, img)
	}
}

func fillEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
