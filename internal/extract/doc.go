// Package extract pulls raw events out of fetched documents.
//
// Four strategies run against every source: a JSON API reader, a
// structured data reader for JSON-LD and microdata, a CSS selector
// engine with per-publisher and generic selector bundles, and a text
// heuristic of last resort. Each strategy grades its own result with a
// confidence value; the runner keeps the highest-confidence non-empty
// result, preferring earlier strategies on ties.
package extract
