package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkaelin/limmat-events/internal/event"
	"github.com/mkaelin/limmat-events/internal/normalize"
)

// Heuristic is the last-resort strategy: scan small text blocks for a
// date plus event vocabulary and guess the title. Confidence starts at
// 0.5 per hit and earns bonuses for a keyword in the title and a
// parseable clock time, capped at 0.7 so any configured selector still
// outranks it.
type Heuristic struct{}

func (Heuristic) Name() string { return MethodHeuristic }

const (
	heuristicBase       = 0.5
	heuristicTitleBonus = 0.1
	heuristicClockBonus = 0.1
	heuristicCap        = 0.7

	// Block size bounds in runes. The lower bound skips bare dates,
	// the upper bound skips page-level wrappers so the leaf block
	// containing one event wins over its ancestors.
	minBlockRunes = 12
	maxBlockRunes = 400
)

// eventWords is the per-language vocabulary a block must contain to
// count as an event. German covers the Swiss municipal vocabulary
// including compounds matched by substring.
var eventWords = map[string][]string{
	"de": {
		"fest", "konzert", "markt", "märt", "chilbi", "turnier", "ausstellung",
		"führung", "theater", "anlass", "veranstaltung", "openair", "open air",
		"lauf", "rennen", "matinee", "brunch", "party", "disco", "kurs",
		"workshop", "treff", "versammlung", "apéro", "turnen", "probe",
		"gottesdienst", "vernissage", "lesung", "kino", "bazar", "basar",
	},
	"fr": {
		"fête", "concert", "marché", "tournoi", "exposition", "visite",
		"théâtre", "manifestation", "soirée", "spectacle", "atelier", "brunch",
		"vernissage", "lecture", "course", "cortège", "loto",
	},
}

func (h Heuristic) Extract(ctx context.Context, in Input) (Result, error) {
	if in.Doc == nil {
		return Result{Method: MethodHeuristic}, nil
	}
	vocab := eventWords[in.Opts.Language]
	if vocab == nil {
		vocab = eventWords["de"]
	}

	type hit struct {
		raw  event.Raw
		conf float64
	}
	hits := make(map[string]hit)

	in.Doc.Find("article, section, li, td, div, p").Each(func(_ int, sel *goquery.Selection) {
		text := normalize.CollapseSpace(sel.Text())
		n := utf8.RuneCountInString(text)
		if n < minBlockRunes || n > maxBlockRunes {
			return
		}
		start, ok := normalize.ParseDateAt(text, in.Opts.DateHint, in.now())
		if !ok {
			return
		}
		lower := strings.ToLower(text)
		if !containsAny(lower, vocab) {
			return
		}
		title := heuristicTitle(sel, text)
		if utf8.RuneCountInString(title) < 3 {
			return
		}

		conf := heuristicBase
		if containsAny(strings.ToLower(title), vocab) {
			conf += heuristicTitleBonus
		}
		if _, _, ok := normalize.FindClock(text); ok {
			conf += heuristicClockBonus
		}
		if conf > heuristicCap {
			conf = heuristicCap
		}

		raw := event.Raw{Title: title, Start: start, Description: text}
		if href, ok := sel.Find("a").First().Attr("href"); ok {
			raw.URL = resolveURL(in.PageURL, href)
		}
		key := event.NormalizeTitle(title) + "|" + start.UTC().Format("200601021504")
		if prev, ok := hits[key]; !ok || conf > prev.conf {
			hits[key] = hit{raw: raw, conf: conf}
		}
	})

	if len(hits) == 0 {
		return Result{Method: MethodHeuristic}, nil
	}
	res := Result{Method: MethodHeuristic}
	for _, h := range hits {
		res.Events = append(res.Events, h.raw)
		if h.conf > res.Confidence {
			res.Confidence = h.conf
		}
	}
	return res, nil
}

// heuristicTitle guesses the event title: a heading or emphasized
// element inside the block when present, otherwise the text leading up
// to the first digit with trailing connector words trimmed, so
// "Dorffest Urdorf am 13.09." yields "Dorffest Urdorf".
func heuristicTitle(sel *goquery.Selection, text string) string {
	if t := normalize.CollapseSpace(sel.Find("h1, h2, h3, h4, strong, b, a").First().Text()); t != "" {
		return t
	}
	cut := strings.IndexFunc(text, func(r rune) bool { return r >= '0' && r <= '9' })
	if cut < 0 {
		cut = len(text)
	}
	return trimConnectors(strings.TrimRight(text[:cut], " ,.:;-–"))
}

var connectorWords = map[string]bool{
	"am": true, "um": true, "ab": true, "vom": true, "im": true, "in": true,
	"der": true, "die": true, "das": true, "den": true, "beim": true,
	"le": true, "la": true, "les": true, "du": true, "au": true, "dès": true,
}

func trimConnectors(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 && connectorWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}
