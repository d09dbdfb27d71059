// Package classify assigns a coarse category to an event from keyword
// rules over its title and description. Rules are ordered: the alpine
// autumn traditions come first so that a Désalpe with market stalls is
// not filed as a generic market, and more specific crowds (market,
// family) are checked before the broad seasonal bucket.
package classify

import "strings"

// Categories, most specific first.
const (
	CategoryAlpabzug = "alpabzug"
	CategoryFestival = "festival"
	CategoryMusic    = "music"
	CategoryMarket   = "market"
	CategoryFamily   = "family"
	CategorySports   = "sports"
	CategoryCulture  = "culture"
	CategorySeasonal = "seasonal"
)

type rule struct {
	category string
	keywords []string
}

// Rule order is meaningful: the first match wins.
var rules = []rule{
	{CategoryAlpabzug, []string{
		"alpabzug", "alpabfahrt", "désalpe", "desalpe", "alpchilbi",
		"sennenchilbi", "älplerfest", "alpfest", "viehschau", "chästeilet",
	}},
	{CategoryFestival, []string{
		"festival", "openair", "open air", "dorffest", "stadtfest",
		"quartierfest", "chilbi", "fasnacht", "fest", "fête",
	}},
	{CategoryMusic, []string{
		"konzert", "concert", "musik", "musique", "band", "chor",
		"orchester", "jazz", "blasmusik", "singen",
	}},
	{CategoryMarket, []string{
		"markt", "märt", "marché", "flohmarkt", "brocante", "bazar", "basar",
	}},
	{CategoryFamily, []string{
		"familie", "famille", "kinder", "enfants", "märchen", "zirkus",
		"spielnachmittag", "kasperli",
	}},
	{CategorySports, []string{
		"lauf", "turnier", "tournoi", "rennen", "marathon", "wanderung",
		"velotour", "schwingfest", "sporttag",
	}},
	{CategoryCulture, []string{
		"ausstellung", "exposition", "museum", "musée", "theater",
		"théâtre", "kino", "cinéma", "lesung", "vernissage", "führung",
		"vortrag",
	}},
	{CategorySeasonal, []string{
		"weihnacht", "advent", "samichlaus", "noël", "ostern", "pâques",
		"herbst", "frühling", "silvester", "neujahr", "räbeliechtli",
		"1. august", "bundesfeier",
	}},
}

// Classify returns the category for an event, or the empty string when no
// rule matches. The title is consulted first; the description only breaks
// a tie when the title said nothing, so that incidental words in long
// descriptions cannot override what the event calls itself.
func Classify(title, description string) string {
	if c := match(strings.ToLower(title)); c != "" {
		return c
	}
	return match(strings.ToLower(description))
}

func match(text string) string {
	if text == "" {
		return ""
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.category
			}
		}
	}
	return ""
}

// Categories lists every category Classify can return, in rule order.
func Categories() []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.category)
	}
	return out
}
