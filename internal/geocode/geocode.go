// Package geocode resolves venue and address strings to WGS84
// coordinates through a Nominatim-compatible geocoder.
//
// All lookups go through one shared client so the remote service sees at
// most one request per MinInterval regardless of how many sources are
// being processed. Results, including definitive misses, are cached; a
// small built-in gazetteer of Limmattal localities answers when the
// remote service has no result or is unreachable.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkaelin/limmat-events/internal/metrics"
	"github.com/mkaelin/limmat-events/internal/normalize"
)

// Place is a resolved location.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string        // geocoder endpoint, default public Nominatim
	UserAgent   string        // required by the Nominatim usage policy
	MinInterval time.Duration // minimum spacing between remote requests
	CountryBias string        // appended to queries, e.g. "Schweiz"
	CacheTTL    time.Duration // how long resolved places stay cached
	HTTPClient  *http.Client
}

// Client is a rate-limited, caching geocoder client.
type Client struct {
	baseURL     string
	userAgent   string
	countryBias string
	http        *http.Client
	cache       *Cache
	pacer       *pacer
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * 24 * time.Hour
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		userAgent:   opts.UserAgent,
		countryBias: opts.CountryBias,
		http:        opts.HTTPClient,
		cache:       NewCache(opts.CacheTTL),
		pacer:       &pacer{interval: opts.MinInterval},
	}
}

// Cache returns the client's cache, mainly for inspection in tests.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Resolve geocodes a free-form query. A nil Place with nil error means
// the geocoder had no result; that outcome is cached so the query is not
// repeated. Transport failures return an error after consulting the
// built-in gazetteer.
func (c *Client) Resolve(ctx context.Context, query string) (*Place, error) {
	clean := normalize.CollapseSpace(query)
	if clean == "" {
		return nil, nil
	}
	key := strings.ToLower(clean)

	if place, found := c.cache.Get(key); found {
		metrics.GeocodeCacheHits.Inc()
		return place, nil
	}

	q := clean
	if c.countryBias != "" && !strings.Contains(key, strings.ToLower(c.countryBias)) {
		q = q + ", " + c.countryBias
	}

	if err := c.pacer.wait(ctx); err != nil {
		return nil, err
	}

	results, err := c.search(ctx, q)
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		if place := lookupGazetteer(clean); place != nil {
			log.Debug().Str("query", clean).Msg("geocoder unreachable, using gazetteer")
			return place, nil
		}
		return nil, fmt.Errorf("geocoding %q: %w", clean, err)
	}

	for _, r := range results {
		place, ok := r.toPlace()
		if !ok {
			continue
		}
		metrics.GeocodeLookups.WithLabelValues("ok").Inc()
		c.cache.Set(key, place)
		return place, nil
	}

	if place := lookupGazetteer(clean); place != nil {
		metrics.GeocodeLookups.WithLabelValues("ok").Inc()
		c.cache.Set(key, place)
		return place, nil
	}

	metrics.GeocodeLookups.WithLabelValues("miss").Inc()
	c.cache.SetMiss(key)
	return nil, nil
}

// FindCoordinates resolves an event location the way the pipeline needs
// it: the full address first, the venue when there is no address, and
// the bare city as a second chance when the specific query missed.
func (c *Client) FindCoordinates(ctx context.Context, address, venue, city string) (*Place, error) {
	primary := address
	if primary == "" {
		primary = venue
	}

	if primary != "" {
		place, err := c.Resolve(ctx, primary)
		if err != nil {
			return nil, err
		}
		if place != nil {
			return place, nil
		}
	}

	if city != "" && !strings.EqualFold(city, primary) {
		return c.Resolve(ctx, city)
	}
	return nil, nil
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (r searchResult) toPlace() (*Place, bool) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, false
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, false
	}
	return &Place{Lat: lat, Lon: lon, DisplayName: r.DisplayName}, true
}

func (c *Client) search(ctx context.Context, query string) ([]searchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "3")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return results, nil
}
