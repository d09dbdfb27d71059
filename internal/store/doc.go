// Package store provides JSON-based persistence for canonical events.
//
// All events live in a single events.json snapshot keyed by identity
// hash. Upserts are idempotent: a new hash creates the record and
// assigns its ID, a known hash refreshes the mutable fields and bumps
// the update timestamp. The default location is
// ~/.local/share/limmat-events/.
package store
