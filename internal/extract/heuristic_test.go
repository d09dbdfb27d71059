package extract

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestHeuristic(t *testing.T) {
	date := time.Now().AddDate(0, 1, 0).Format("02.01.2006")

	tests := []struct {
		name      string
		html      string
		language  string
		wantTitle string
		wantConf  float64
	}{
		{
			name: "emphasized title with keyword and clock",
			html: fmt.Sprintf(`<div class="newsbox"><strong>Dorffest Urdorf</strong> am %s ab 14.00 Uhr auf dem Dorfplatz.</div>`, date),
			wantTitle: "Dorffest Urdorf",
			wantConf:  0.7,
		},
		{
			name:      "title guessed from text before the date",
			html:      fmt.Sprintf(`<p>Adventskonzert der Harmonie am %s in der katholischen Kirche.</p>`, date),
			wantTitle: "Adventskonzert der Harmonie",
			wantConf:  0.6,
		},
		{
			name:      "french vocabulary",
			html:      fmt.Sprintf(`<p>Marché de Noël le %s dès 10h sur la place du village.</p>`, date),
			language:  "fr",
			wantTitle: "Marché de Noël",
			wantConf:  0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Heuristic{}.Extract(context.Background(), Input{
				Doc:  mustDoc(t, "<html><body>"+tt.html+"</body></html>"),
				Opts: Options{Language: tt.language},
			})
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if len(res.Events) != 1 {
				t.Fatalf("got %d events, want 1", len(res.Events))
			}
			if res.Events[0].Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", res.Events[0].Title, tt.wantTitle)
			}
			if res.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", res.Confidence, tt.wantConf)
			}
			if res.Method != MethodHeuristic {
				t.Errorf("method = %q", res.Method)
			}
		})
	}
}

func TestHeuristicIgnoresNoise(t *testing.T) {
	date := time.Now().AddDate(0, 1, 0).Format("02.01.2006")
	html := fmt.Sprintf(`<html><body>
	<nav><ul>
	  <li><a href="/politik">Politik und Verwaltung</a></li>
	  <li><a href="/wohnen">Wohnen und Bauen im Dorf</a></li>
	</ul></nav>
	<p>Die Steuererklärung ist bis am %s einzureichen.</p>
	<p>Openair Kino am %s, Eintritt frei.</p>
	</body></html>`, date, date)

	res, err := Heuristic{}.Extract(context.Background(), Input{Doc: mustDoc(t, html)})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1 (nav items lack dates, tax deadline lacks vocabulary)", len(res.Events))
	}
	if res.Events[0].Title != "Openair Kino" {
		t.Errorf("title = %q", res.Events[0].Title)
	}
}

func TestHeuristicDedupesNestedBlocks(t *testing.T) {
	date := time.Now().AddDate(0, 1, 0).Format("02.01.2006")
	html := fmt.Sprintf(`<html><body>
	<div><p><strong>Chilbi Oetwil</strong> vom %s auf dem Schulhausplatz.</p></div>
	</body></html>`, date)

	res, err := Heuristic{}.Extract(context.Background(), Input{Doc: mustDoc(t, html)})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Events) != 1 {
		t.Errorf("got %d events, want 1 (div and p wrap the same text)", len(res.Events))
	}
}

func TestHeuristicEmptyPage(t *testing.T) {
	res, err := Heuristic{}.Extract(context.Background(), Input{
		Doc: mustDoc(t, "<html><body><p>Herzlich willkommen in unserer Gemeinde.</p></body></html>"),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Events) != 0 || res.Confidence != 0 {
		t.Errorf("want empty result, got %d events at %v", len(res.Events), res.Confidence)
	}
}

func TestTrimConnectors(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Dorffest Urdorf am", "Dorffest Urdorf"},
		{"Konzert in der", "Konzert"},
		{"Marché de Noël le", "Marché de Noël"},
		{"Chilbi", "Chilbi"},
	}
	for _, tt := range tests {
		if got := trimConnectors(tt.in); got != tt.want {
			t.Errorf("trimConnectors(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
