// Package normalize turns the messy text scraped from event pages into
// typed values: dates in several German and French notations, Swiss
// postal addresses, price strings and whitespace-damaged prose.
//
// Date parsing is deliberately forgiving about surrounding text but strict
// about plausibility: a candidate more than a year in the past or more
// than two years ahead is treated as a mis-parse, which filters out phone
// numbers and postal codes that happen to look like dates.
package normalize
