package normalize

import (
	"regexp"
	"strings"
)

// Address is the best-effort decomposition of a Swiss address line.
// Anything that could not be attributed stays in Street.
type Address struct {
	Street     string
	PostalCode string
	City       string
}

// Swiss postal codes run 1000-9999, always followed by the locality.
var postalCodeRe = regexp.MustCompile(`\b([1-9]\d{3})\s+(\p{L}[\p{L}\d .'\-/]*)`)

var countrySuffixes = []string{
	"schweiz", "suisse", "svizzera", "switzerland", "ch",
}

// SplitAddress decomposes a free-form address into street, postal code and
// city. The strongest signal is a four-digit Swiss postal code followed by
// a locality; without one, the last comma-separated segment is taken as
// the city and the remainder as the street.
func SplitAddress(text string) Address {
	s := CollapseSpace(text)
	if s == "" {
		return Address{}
	}

	segments := strings.Split(s, ",")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	for i, seg := range segments {
		m := postalCodeRe.FindStringSubmatchIndex(seg)
		if m == nil {
			continue
		}
		addr := Address{
			PostalCode: seg[m[2]:m[3]],
			City:       trimCountry(seg[m[4]:m[5]]),
		}
		street := append([]string{}, segments[:i]...)
		if prefix := strings.TrimSpace(strings.TrimRight(seg[:m[0]], " ,")); prefix != "" {
			street = append(street, prefix)
		}
		addr.Street = strings.Join(street, ", ")
		return addr
	}

	if len(segments) >= 2 {
		return Address{
			Street: strings.Join(segments[:len(segments)-1], ", "),
			City:   trimCountry(segments[len(segments)-1]),
		}
	}

	// A single segment with a house number reads as a street, otherwise as
	// a bare locality.
	if strings.ContainsAny(s, "0123456789") {
		return Address{Street: s}
	}
	return Address{City: trimCountry(s)}
}

// trimCountry drops a trailing country name from a locality string.
func trimCountry(city string) string {
	city = strings.TrimSpace(city)
	lower := strings.ToLower(city)
	for _, suffix := range countrySuffixes {
		if lower == suffix {
			return ""
		}
		if strings.HasSuffix(lower, " "+suffix) {
			return strings.TrimSpace(city[:len(city)-len(suffix)-1])
		}
	}
	return city
}
