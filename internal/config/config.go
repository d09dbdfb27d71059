package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// ErrInvalid marks configuration validation failures.
var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "LIMMAT_"

// Config holds the application settings.
type Config struct {
	LogLevel        string `koanf:"log_level"`
	DataDir         string `koanf:"data_dir"`
	SourcesFile     string `koanf:"sources_file"`
	UserAgent       string `koanf:"user_agent"`
	DefaultLanguage string `koanf:"default_language"`
	CountryCode     string `koanf:"country_code"`

	GeocoderURL     string        `koanf:"geocoder_url"`
	GeocodeInterval time.Duration `koanf:"geocode_interval"`

	// Reference point and radius for the distance filter. The default
	// is the Schlieren town centre.
	ReferenceLat float64 `koanf:"reference_lat"`
	ReferenceLon float64 `koanf:"reference_lon"`
	RadiusKm     float64 `koanf:"radius_km"`

	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
	FetchAttempts int           `koanf:"fetch_attempts"`
	SourceTimeout time.Duration `koanf:"source_timeout"`
	SourceDelay   time.Duration `koanf:"source_delay"`
	DetailDelay   time.Duration `koanf:"detail_delay"`

	DescriptionLimit int    `koanf:"description_limit"`
	MetricsAddr      string `koanf:"metrics_addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:         "info",
		DataDir:          "~/.local/share/limmat-events",
		SourcesFile:      "sources.yaml",
		UserAgent:        "limmat-events/1.0 (+https://github.com/mkaelin/limmat-events)",
		DefaultLanguage:  "de",
		CountryCode:      "CH",
		GeocoderURL:      "https://nominatim.openstreetmap.org",
		GeocodeInterval:  time.Second,
		ReferenceLat:     47.3960,
		ReferenceLon:     8.4470,
		RadiusKm:         25,
		FetchTimeout:     20 * time.Second,
		FetchAttempts:    3,
		SourceTimeout:    2 * time.Minute,
		SourceDelay:      2 * time.Second,
		DetailDelay:      500 * time.Millisecond,
		DescriptionLimit: 2000,
	}
}

// Load builds the configuration from defaults, the given YAML file and
// LIMMAT_ environment variables. An empty path skips the file; a named
// file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("loading config file: %w", err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return cfg, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefaultFile is Load with the conventional file locations: the
// file named by LIMMAT_CONFIG when set, else a config.yaml in the
// working directory when present, otherwise only defaults and
// environment apply.
func LoadDefaultFile() (Config, error) {
	if path := os.Getenv("LIMMAT_CONFIG"); path != "" {
		return Load(path)
	}
	path := "config.yaml"
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	return Load(path)
}

// Validate checks the settings for obvious mistakes.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalid)
	}
	if _, err := language.Parse(c.DefaultLanguage); err != nil {
		return fmt.Errorf("%w: default_language %q", ErrInvalid, c.DefaultLanguage)
	}
	if len(c.CountryCode) != 2 {
		return fmt.Errorf("%w: country_code %q, want two letters", ErrInvalid, c.CountryCode)
	}
	if c.ReferenceLat < -90 || c.ReferenceLat > 90 || c.ReferenceLon < -180 || c.ReferenceLon > 180 {
		return fmt.Errorf("%w: reference point %v,%v out of range", ErrInvalid, c.ReferenceLat, c.ReferenceLon)
	}
	if c.RadiusKm <= 0 {
		return fmt.Errorf("%w: radius_km must be positive", ErrInvalid)
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("%w: fetch_attempts must be at least 1", ErrInvalid)
	}
	if c.GeocodeInterval <= 0 {
		return fmt.Errorf("%w: geocode_interval must be positive", ErrInvalid)
	}
	return nil
}
