package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Options{
		BaseURL:     srv.URL,
		UserAgent:   "limmat-events-test/1.0",
		MinInterval: time.Millisecond,
		CountryBias: "Schweiz",
	})
	return c, srv
}

func TestResolve(t *testing.T) {
	var calls atomic.Int32
	var lastQuery atomic.Value
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		lastQuery.Store(r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"47.3964000","lon":"8.4474000","display_name":"Marktplatz, Schlieren, Schweiz"}]`))
	})

	place, err := c.Resolve(context.Background(), "Marktplatz 1, 8952 Schlieren")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if place == nil {
		t.Fatal("Resolve() = nil, want a place")
	}
	if place.Lat != 47.3964 || place.Lon != 8.4474 {
		t.Errorf("Resolve() = %.4f/%.4f, want 47.3964/8.4474", place.Lat, place.Lon)
	}

	if q, _ := lastQuery.Load().(string); !strings.Contains(q, "Schweiz") {
		t.Errorf("query %q does not carry the country bias", q)
	}

	// Same query again must come from the cache.
	again, err := c.Resolve(context.Background(), "Marktplatz 1, 8952 Schlieren")
	if err != nil {
		t.Fatalf("cached Resolve() error = %v", err)
	}
	if again == nil || again.Lat != place.Lat {
		t.Errorf("cached Resolve() = %+v, want the same place", again)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("geocoder saw %d requests, want 1", got)
	}
}

func TestResolveCachesMisses(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	// Not in the gazetteer either, so this is a definitive miss.
	for i := 0; i < 3; i++ {
		place, err := c.Resolve(context.Background(), "Nirgendwogasse 99")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if place != nil {
			t.Fatalf("Resolve() = %+v, want nil for a miss", place)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("geocoder saw %d requests, want 1 (miss must be cached)", got)
	}
	if got := c.Cache().Size(); got != 1 {
		t.Errorf("cache holds %d entries, want 1 for the recorded miss", got)
	}
}

func TestResolveGazetteerFallbackOnEmptyResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	place, err := c.Resolve(context.Background(), "Gemeindeplatz, 8953 Dietikon")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if place == nil {
		t.Fatal("Resolve() = nil, want gazetteer entry for Dietikon")
	}
	if place.Lat < 47.3 || place.Lat > 47.5 {
		t.Errorf("Resolve() lat = %v, want Dietikon latitude", place.Lat)
	}
}

func TestResolveGazetteerFallbackOnServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	place, err := c.Resolve(context.Background(), "Kirchplatz, Schlieren")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want gazetteer fallback", err)
	}
	if place == nil || place.Lat != 47.3964 {
		t.Errorf("Resolve() = %+v, want Schlieren gazetteer entry", place)
	}
}

func TestResolveErrorWithoutFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := c.Resolve(context.Background(), "Hauptstrasse 1, Bern"); err == nil {
		t.Error("Resolve() error = nil, want error when geocoder is down and gazetteer has no entry")
	}
}

func TestResolveRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"47.0","lon":"8.0","display_name":"x"}]`))
	}))
	defer srv.Close()

	c := NewClient(Options{
		BaseURL:     srv.URL,
		UserAgent:   "test",
		MinInterval: 120 * time.Millisecond,
	})

	start := time.Now()
	if _, err := c.Resolve(context.Background(), "erste Anfrage"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := c.Resolve(context.Background(), "zweite Anfrage"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("two lookups finished in %v, want at least the MinInterval between them", elapsed)
	}
}

func TestFindCoordinates(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(q, "Wolfsgrubenweg") {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"lat":"47.4014","lon":"8.4003","display_name":"Dietikon"}]`))
	})

	// The street is unknown to the geocoder and to the gazetteer, the
	// city retry must answer.
	place, err := c.FindCoordinates(context.Background(), "Wolfsgrubenweg 3", "", "Dietikon")
	if err != nil {
		t.Fatalf("FindCoordinates() error = %v", err)
	}
	if place == nil || place.Lat != 47.4014 {
		t.Fatalf("FindCoordinates() = %+v, want Dietikon", place)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(queries) != 2 {
		t.Fatalf("geocoder saw %d queries, want 2 (address then city)", len(queries))
	}
	if !strings.Contains(queries[0], "Wolfsgrubenweg") || !strings.Contains(queries[1], "Dietikon") {
		t.Errorf("queries = %v, want address first and city second", queries)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(10 * time.Millisecond)
	cache.Set("schlieren", &Place{Lat: 1, Lon: 2})

	if _, found := cache.Get("schlieren"); !found {
		t.Fatal("entry missing right after Set")
	}
	time.Sleep(20 * time.Millisecond)
	if _, found := cache.Get("schlieren"); found {
		t.Error("entry still present after TTL expiry")
	}
}
