package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mkaelin/limmat-events/internal/extract"
)

// ErrInvalidSource marks source catalog validation failures.
var ErrInvalidSource = errors.New("invalid source")

// DefaultMaxDetailPages bounds detail page fetches per source when
// detail_pages is enabled without an explicit limit.
const DefaultMaxDetailPages = 5

// Source describes one event page to collect.
type Source struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Family      string `yaml:"family,omitempty"`
	APIEndpoint string `yaml:"api_endpoint,omitempty"`
	Language    string `yaml:"language,omitempty"`

	// DateFormat is an optional Go time layout tried before the
	// built-in date grammars, for pages with unusual formats.
	DateFormat string `yaml:"date_format,omitempty"`

	RequiresRender   bool `yaml:"requires_render,omitempty"`
	DetailPages      bool `yaml:"detail_pages,omitempty"`
	MaxDetailPages   int  `yaml:"max_detail_pages,omitempty"`
	FilterByDistance bool `yaml:"filter_by_distance,omitempty"`

	Selectors *extract.Bundle `yaml:"selectors,omitempty"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads and validates the source catalog. Decoding is
// strict: unknown YAML keys are an error.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sources file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var catalog sourcesFile
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("parsing sources file: %w", err)
	}
	if len(catalog.Sources) == 0 {
		return nil, fmt.Errorf("%w: %s lists no sources", ErrInvalidSource, path)
	}

	seen := make(map[string]bool, len(catalog.Sources))
	for i := range catalog.Sources {
		src := &catalog.Sources[i]
		if err := src.validate(); err != nil {
			return nil, err
		}
		if seen[src.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidSource, src.Name)
		}
		seen[src.Name] = true

		if src.DetailPages && src.MaxDetailPages <= 0 {
			src.MaxDetailPages = DefaultMaxDetailPages
		}
		if src.Family != "" && !extract.KnownFamily(src.Family) {
			log.Warn().Str("source", src.Name).Str("family", src.Family).
				Strs("known", extract.FamilyNames()).
				Msg("unknown family, falling back to generic selectors")
		}
	}
	return catalog.Sources, nil
}

func (s *Source) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSource)
	}
	if s.URL == "" {
		return fmt.Errorf("%w: %s has no url", ErrInvalidSource, s.Name)
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %s has invalid url %q", ErrInvalidSource, s.Name, s.URL)
	}
	if s.APIEndpoint != "" {
		if a, err := url.Parse(s.APIEndpoint); err != nil || (a.Scheme != "http" && a.Scheme != "https") {
			return fmt.Errorf("%w: %s has invalid api_endpoint %q", ErrInvalidSource, s.Name, s.APIEndpoint)
		}
	}
	switch strings.ToLower(s.Language) {
	case "", "de", "fr":
	default:
		return fmt.Errorf("%w: %s has unsupported language %q", ErrInvalidSource, s.Name, s.Language)
	}
	return nil
}
