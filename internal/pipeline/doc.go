// Package pipeline runs the collection cycle: fetch each configured
// source, extract raw events, enrich them from detail pages, geocode
// and classify them, and upsert the canonical records into the store.
//
// Sources run sequentially with a delay between them and a timeout
// around each one. A failing source is reported and skipped; it never
// aborts the run.
package pipeline
