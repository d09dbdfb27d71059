package geocode

import (
	"sort"
	"strings"
)

// gazetteer holds coordinates for the Limmattal and its surroundings.
// It answers when the remote geocoder has no result or is down, which
// keeps distance filtering working for the localities that matter most.
var gazetteer = map[string]Place{
	"schlieren":        {Lat: 47.3964, Lon: 8.4474, DisplayName: "Schlieren, Zürich"},
	"dietikon":         {Lat: 47.4014, Lon: 8.4003, DisplayName: "Dietikon, Zürich"},
	"urdorf":           {Lat: 47.3852, Lon: 8.4253, DisplayName: "Urdorf, Zürich"},
	"oberengstringen":  {Lat: 47.4098, Lon: 8.4628, DisplayName: "Oberengstringen, Zürich"},
	"unterengstringen": {Lat: 47.4094, Lon: 8.4441, DisplayName: "Unterengstringen, Zürich"},
	"oetwil":           {Lat: 47.4281, Lon: 8.3946, DisplayName: "Oetwil an der Limmat, Zürich"},
	"geroldswil":       {Lat: 47.4222, Lon: 8.4100, DisplayName: "Geroldswil, Zürich"},
	"weiningen":        {Lat: 47.4203, Lon: 8.4364, DisplayName: "Weiningen, Zürich"},
	"birmensdorf":      {Lat: 47.3553, Lon: 8.4372, DisplayName: "Birmensdorf, Zürich"},
	"uitikon":          {Lat: 47.3697, Lon: 8.4551, DisplayName: "Uitikon, Zürich"},
	"zürich":           {Lat: 47.3769, Lon: 8.5417, DisplayName: "Zürich"},
	"zurich":           {Lat: 47.3769, Lon: 8.5417, DisplayName: "Zürich"},
	"spreitenbach":     {Lat: 47.4221, Lon: 8.3664, DisplayName: "Spreitenbach, Aargau"},
	"killwangen":       {Lat: 47.4319, Lon: 8.3497, DisplayName: "Killwangen, Aargau"},
	"würenlos":         {Lat: 47.4412, Lon: 8.3632, DisplayName: "Würenlos, Aargau"},
	"neuenhof":         {Lat: 47.4504, Lon: 8.3254, DisplayName: "Neuenhof, Aargau"},
	"bergdietikon":     {Lat: 47.3828, Lon: 8.3683, DisplayName: "Bergdietikon, Aargau"},
	"wettingen":        {Lat: 47.4703, Lon: 8.3167, DisplayName: "Wettingen, Aargau"},
	"baden":            {Lat: 47.4734, Lon: 8.3063, DisplayName: "Baden, Aargau"},
}

// lookupGazetteer finds a built-in locality mentioned in the query. When
// several match, the longest name wins, so "Bergdietikon" is not
// answered with the Dietikon entry.
func lookupGazetteer(query string) *Place {
	q := strings.ToLower(query)

	var keys []string
	for key := range gazetteer {
		if strings.Contains(q, key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	place := gazetteer[keys[0]]
	return &place
}
