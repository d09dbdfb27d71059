package pipeline

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkaelin/limmat-events/internal/config"
	"github.com/mkaelin/limmat-events/internal/extract"
	"github.com/mkaelin/limmat-events/internal/fetch"
	"github.com/mkaelin/limmat-events/internal/geocode"
	"github.com/mkaelin/limmat-events/internal/store"
)

// geoFunc adapts a function to the Geocoder interface.
type geoFunc func(ctx context.Context, address, venue, city string) (*geocode.Place, error)

func (f geoFunc) FindCoordinates(ctx context.Context, address, venue, city string) (*geocode.Place, error) {
	return f(ctx, address, venue, city)
}

func schlierenGeo(ctx context.Context, address, venue, city string) (*geocode.Place, error) {
	return &geocode.Place{Lat: 47.3964, Lon: 8.4474, DisplayName: "Schlieren, Schweiz"}, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SourceDelay = 0
	cfg.DetailDelay = 0
	cfg.SourceTimeout = 10 * time.Second
	return cfg
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	return st
}

func TestRunEndToEnd(t *testing.T) {
	start := time.Now().AddDate(0, 1, 0).UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><script type="application/ld+json">
		{
		  "@context": "https://schema.org",
		  "@graph": [
		    {
		      "@type": "Event",
		      "name": "Herbstmarkt",
		      "startDate": %q,
		      "description": "Marktstände mit regionalen Produkten und Festwirtschaft.",
		      "location": {
		        "@type": "Place",
		        "name": "Dorfplatz",
		        "address": {
		          "@type": "PostalAddress",
		          "streetAddress": "Badenerstrasse 1",
		          "postalCode": "8952",
		          "addressLocality": "Schlieren"
		        }
		      }
		    },
		    {"@type": "Event", "name": "Gemeindeversammlung", "startDate": %q}
		  ]
		}
		</script></head><body></body></html>`, start.Format(time.RFC3339), start.Format(time.RFC3339))
	}))
	defer srv.Close()

	st := openStore(t)
	runner := New(fetch.New("limmat-events-test", 5*time.Second, 1), geoFunc(schlierenGeo), st, testConfig())
	sources := []config.Source{{Name: "schlieren", URL: srv.URL + "/anlaesse"}}

	report := runner.Run(context.Background(), sources)

	if len(report.Sources) != 1 {
		t.Fatalf("got %d source reports, want 1", len(report.Sources))
	}
	src := report.Sources[0]
	if src.Method != extract.MethodStructured {
		t.Errorf("method = %q, want structured", src.Method)
	}
	if src.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", src.Confidence)
	}
	if src.Found != 2 || src.Created != 1 || src.Skipped != 1 {
		t.Errorf("found/created/skipped = %d/%d/%d, want 2/1/1 (Gemeindeversammlung blocked)",
			src.Found, src.Created, src.Skipped)
	}
	if got := report.Status(context.Background()); got != "ok" {
		t.Errorf("status = %q, want ok", got)
	}
	if len(report.NewEvents) != 1 {
		t.Fatalf("got %d new events, want 1", len(report.NewEvents))
	}

	ev := report.NewEvents[0]
	if ev.Category != "market" {
		t.Errorf("category = %q, want market", ev.Category)
	}
	if ev.City != "Schlieren" || ev.PostalCode != "8952" {
		t.Errorf("city/plz = %q/%q", ev.City, ev.PostalCode)
	}
	if ev.Street != "Badenerstrasse 1" {
		t.Errorf("street = %q", ev.Street)
	}
	if ev.Lat == nil || math.Abs(*ev.Lat-47.396) > 0.01 || ev.Lon == nil || math.Abs(*ev.Lon-8.447) > 0.01 {
		t.Errorf("coordinates = %v,%v, want near 47.396,8.447", ev.Lat, ev.Lon)
	}
	if !ev.Start.Equal(start) {
		t.Errorf("start = %v, want %v", ev.Start, start)
	}
	firstID := ev.ID

	// The second run must update in place, not duplicate.
	report2 := runner.Run(context.Background(), sources)
	src2 := report2.Sources[0]
	if src2.Created != 0 || src2.Updated != 1 {
		t.Errorf("second run created/updated = %d/%d, want 0/1", src2.Created, src2.Updated)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d events after rerun, want 1", st.Len())
	}
	stored, ok := st.Get(ev.Hash)
	if !ok || stored.ID != firstID {
		t.Error("rerun should keep the original event ID")
	}
}

func TestRunFailureIsolation(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaputt", http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><script type="application/ld+json">
		{"@type": "Event", "name": "Repair Café", "startDate": %q}
		</script></head><body></body></html>`, time.Now().AddDate(0, 0, 14).UTC().Format(time.RFC3339))
	}))
	defer good.Close()

	st := openStore(t)
	runner := New(fetch.New("limmat-events-test", 2*time.Second, 1), geoFunc(schlierenGeo), st, testConfig())

	report := runner.Run(context.Background(), []config.Source{
		{Name: "defekt", URL: bad.URL},
		{Name: "intakt", URL: good.URL},
	})

	if len(report.Sources) != 2 {
		t.Fatalf("got %d source reports, want 2", len(report.Sources))
	}
	if !report.Sources[0].Failed() {
		t.Error("first source should be reported as failed")
	}
	if report.Sources[1].Created != 1 {
		t.Errorf("second source created = %d, want 1 despite earlier failure", report.Sources[1].Created)
	}
	if got := report.Status(context.Background()); got != "partial" {
		t.Errorf("status = %q, want partial", got)
	}
}

func TestRunDistanceFilter(t *testing.T) {
	start := time.Now().AddDate(0, 0, 30).UTC().Format(time.RFC3339)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><script type="application/ld+json">
		[
		  {"@type": "Event", "name": "Grossmesse", "startDate": %q, "location": {"@type": "Place", "name": "Palexpo"}},
		  {"@type": "Event", "name": "Waldfest", "startDate": %q, "location": {"@type": "Place", "name": "Waldhütte"}}
		]
		</script></head><body></body></html>`, start, start)
	}))
	defer srv.Close()

	// Palexpo resolves to Geneva, far outside the radius. The forest
	// hut stays unresolved and must pass the filter open.
	geo := geoFunc(func(ctx context.Context, address, venue, city string) (*geocode.Place, error) {
		if venue == "Palexpo" {
			return &geocode.Place{Lat: 46.2044, Lon: 6.1432}, nil
		}
		return nil, nil
	})

	st := openStore(t)
	runner := New(fetch.New("limmat-events-test", 2*time.Second, 1), geo, st, testConfig())
	report := runner.Run(context.Background(), []config.Source{
		{Name: "agenda", URL: srv.URL, FilterByDistance: true},
	})

	src := report.Sources[0]
	if src.Created != 1 || src.Skipped != 1 {
		t.Errorf("created/skipped = %d/%d, want 1/1", src.Created, src.Skipped)
	}
	events := st.List()
	if len(events) != 1 || events[0].Title != "Waldfest" {
		t.Errorf("stored events = %v, want only Waldfest", events)
	}
}

func TestRunDetailPages(t *testing.T) {
	start := time.Now().AddDate(0, 1, 0)
	longDesc := "Langes Jubiläumsprogramm mit Festwirtschaft und Konzerten auf dem ganzen Areal."

	mux := http.NewServeMux()
	var detailCalls atomic.Int32
	mux.HandleFunc("/anlaesse", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
		<div class="event-item">
		  <h3><a href="/detail/1">Jubiläumsfest</a></h3>
		  <time datetime=%q>bald</time>
		  <p>Kurzer Teaser.</p>
		</div>
		</body></html>`, start.Format("2006-01-02T15:04"))
	})
	mux.HandleFunc("/detail/1", func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		fmt.Fprintf(w, `<html><head>
		<meta property="og:description" content=%q>
		<meta property="og:image" content="https://cdn.example/img/fest.jpg">
		</head><body></body></html>`, longDesc)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := openStore(t)
	runner := New(fetch.New("limmat-events-test", 2*time.Second, 1), geoFunc(schlierenGeo), st, testConfig())
	report := runner.Run(context.Background(), []config.Source{
		{Name: "jubilaeum", URL: srv.URL + "/anlaesse", DetailPages: true, MaxDetailPages: 3},
	})

	if report.Sources[0].Created != 1 {
		t.Fatalf("created = %d, want 1", report.Sources[0].Created)
	}
	if calls := detailCalls.Load(); calls != 1 {
		t.Errorf("detail page fetched %d times, want 1", calls)
	}
	ev := st.List()[0]
	if ev.Description != longDesc {
		t.Errorf("description = %q, want the detail page text", ev.Description)
	}
	if ev.ImageURL != "https://cdn.example/img/fest.jpg" {
		t.Errorf("image = %q", ev.ImageURL)
	}
}
