package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/mkaelin/limmat-events/internal/event"
)

// Extraction method names, also used as metric label values.
const (
	MethodAPI        = "api"
	MethodStructured = "structured"
	MethodSelector   = "selector"
	MethodHeuristic  = "heuristic"
	MethodNone       = "none"
)

// Strategy confidences. Structured markup and APIs are near-certain;
// explicitly configured selectors almost as good. Generic selector
// families and the heuristic grade themselves lower, see bundles.go and
// heuristic.go.
const (
	ConfidenceAPI        = 0.95
	ConfidenceStructured = 0.95
	ConfidenceConfigured = 0.9
)

// Options carries the per-source knobs the strategies need.
type Options struct {
	Source      string    // source name, for logging
	Language    string    // "de" or "fr", picks the heuristic vocabulary
	DateHint    string    // optional Go layout tried before the grammars
	Family      string    // publisher family tag from sources.yaml
	Selectors   *Bundle   // explicit selector overrides, merged over the family bundle
	APIEndpoint string    // explicit JSON endpoint; empty means derive from family
	Now         time.Time // reference instant for date parsing; zero means time.Now()
}

// Input is one fetched document plus its source options.
type Input struct {
	Doc     *goquery.Document // nil when the source is API-only
	PageURL string
	Opts    Options
}

func (in Input) now() time.Time {
	if in.Opts.Now.IsZero() {
		return time.Now()
	}
	return in.Opts.Now
}

// Result is what one strategy produced for one document.
type Result struct {
	Events     []event.Raw
	Method     string
	Confidence float64
}

// Strategy is one way of reading events out of an Input.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, in Input) (Result, error)
}

// Run executes strategies in order and returns the best result: highest
// confidence with at least one event, earlier strategies winning ties.
// Strategy failures are collected, not fatal; with no usable result the
// method is "none". The returned strings describe the failures.
func Run(ctx context.Context, in Input, strategies []Strategy) (Result, []string) {
	best := Result{Method: MethodNone}
	var errs []string

	for _, s := range strategies {
		res, err := s.Extract(ctx, in)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			log.Debug().Err(err).Str("source", in.Opts.Source).Str("strategy", s.Name()).Msg("strategy failed")
			continue
		}
		if len(res.Events) > 0 && res.Confidence > best.Confidence {
			best = res
		}
	}
	return best, errs
}

// DefaultStrategies returns the standard strategy order. The API client
// is shared across sources so its HTTP settings apply everywhere.
func DefaultStrategies(api *API) []Strategy {
	return []Strategy{api, Structured{}, Selector{}, Heuristic{}}
}

// NewDocument parses page HTML for extraction.
func NewDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}

// resolveURL makes ref absolute against base. Unparseable input returns
// the ref unchanged; an empty ref stays empty.
func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == "" {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// dedupeRaw drops events repeating an earlier (title, start) pair, so a
// page carrying both JSON-LD and microdata for the same events yields
// each once.
func dedupeRaw(events []event.Raw) []event.Raw {
	seen := make(map[string]bool, len(events))
	var out []event.Raw
	for _, ev := range events {
		key := event.NormalizeTitle(ev.Title) + "|" + ev.Start.UTC().Truncate(time.Minute).Format(time.RFC3339)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ev)
	}
	return out
}
