// Package event defines the raw and canonical event records that flow
// through the extraction pipeline.
//
// A Raw event is whatever a single extraction strategy managed to pull out
// of one document: trimmed but unvalidated text fields plus a start instant.
// Canonical is the persisted form after normalization, geocoding and
// classification. Each canonical event carries a deterministic SHA1 hash
// over its normalized title, minute-rounded start and coordinates rounded
// to four decimals, which is the identity used for deduplication across
// sources and runs.
package event
