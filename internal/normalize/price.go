package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Price is the numeric reading of a ticket price string. Min and Max are
// nil when no amount was recognized; free admission yields zero for both.
type Price struct {
	Min      *float64
	Max      *float64
	Currency string
}

var amountRe = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)

var freeAdmissionWords = []string{
	"frei", "gratis", "kostenlos", "gratuit", "libre", "kollekte",
}

// ParsePrice reads amounts out of strings like "CHF 25", "Fr. 20.- /
// Kinder 10.-" or "Eintritt frei". With several amounts the smallest
// becomes Min and the largest Max.
func ParsePrice(text string) Price {
	s := CollapseSpace(text)
	if s == "" {
		return Price{}
	}
	lower := strings.ToLower(s)

	p := Price{Currency: detectCurrency(lower)}

	for _, word := range freeAdmissionWords {
		if strings.Contains(lower, word) {
			zero := 0.0
			p.Min = &zero
			p.Max = &zero
			return p
		}
	}

	var amounts []float64
	for _, m := range amountRe.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, v)
	}
	if len(amounts) == 0 {
		return p
	}

	min, max := amounts[0], amounts[0]
	for _, v := range amounts[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	p.Min = &min
	p.Max = &max
	if p.Currency == "" {
		p.Currency = "CHF"
	}
	return p
}

func detectCurrency(lower string) string {
	switch {
	case strings.Contains(lower, "chf"), strings.Contains(lower, "fr."),
		strings.Contains(lower, "sfr"), strings.Contains(lower, "franken"):
		return "CHF"
	case strings.Contains(lower, "€"), strings.Contains(lower, "eur"):
		return "EUR"
	}
	return ""
}
