// Package cli implements the command-line interface for limmat-events.
//
// The cli package provides the Cobra-based CLI with subcommands for
// collecting events from the configured sources (run), querying the
// stored catalog (list) and exporting it as an iCalendar feed or PDF
// programme (export). It coordinates the config, fetch, extract,
// pipeline, store and notifier packages and maps outcomes to exit
// codes so the tool composes well with cron and shell pipelines.
package cli
