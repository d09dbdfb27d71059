// Package config loads application settings and the source catalog.
//
// Settings come from built-in defaults, an optional YAML file and
// LIMMAT_-prefixed environment variables, in that order. The source
// catalog (sources.yaml) lists the event pages to collect and is
// decoded strictly so typos fail loudly instead of silently disabling
// a selector.
package config
