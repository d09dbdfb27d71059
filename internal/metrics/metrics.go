// Package metrics exposes the pipeline's Prometheus collectors. All
// collectors register on the default registry at init, so importing a
// package that increments them is enough; the CLI decides whether the
// scrape endpoint is actually served.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "limmat"

var (
	// EventsExtracted counts raw events per source and winning method.
	EventsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "events_extracted_total",
		Help:      "Raw events extracted, by source and extraction method.",
	}, []string{"source", "method"})

	// EventsPersisted counts upsert outcomes.
	EventsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "events_persisted_total",
		Help:      "Canonical events written to the store, by source and upsert result.",
	}, []string{"source", "result"})

	// EventsDropped counts events discarded before persistence.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "events_dropped_total",
		Help:      "Events dropped before persistence, by source and reason.",
	}, []string{"source", "reason"})

	// SourceDuration tracks wall time per processed source.
	SourceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "source_duration_seconds",
		Help:      "Time spent processing one source end to end.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"source"})

	// Runs counts completed pipeline runs by outcome.
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Completed pipeline runs, by overall status.",
	}, []string{"status"})

	// RunSources reports the size of the source catalog in the current run.
	RunSources = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "run_sources",
		Help:      "Number of sources in the currently running collection.",
	})

	// GeocodeLookups counts remote geocoder queries by outcome.
	GeocodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "geocode",
		Name:      "lookups_total",
		Help:      "Remote geocoder lookups, by outcome.",
	}, []string{"outcome"})

	// GeocodeCacheHits counts lookups answered from the cache, negative
	// entries included.
	GeocodeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "geocode",
		Name:      "cache_hits_total",
		Help:      "Geocoder lookups answered from the in-memory cache.",
	})

	// FetchRetries counts retried page fetches.
	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fetch",
		Name:      "retries_total",
		Help:      "HTTP fetch attempts that were retried after a transient failure.",
	})
)

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
