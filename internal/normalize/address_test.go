package normalize

import "testing"

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Address
	}{
		{
			name: "Street comma postal city",
			text: "Marktplatz 1, 8952 Schlieren",
			want: Address{Street: "Marktplatz 1", PostalCode: "8952", City: "Schlieren"},
		},
		{
			name: "Venue and street before postal code",
			text: "Stadthalle, Bahnhofstrasse 12, 8953 Dietikon",
			want: Address{Street: "Stadthalle, Bahnhofstrasse 12", PostalCode: "8953", City: "Dietikon"},
		},
		{
			name: "Single segment with postal code",
			text: "Marktplatz 1 8952 Schlieren",
			want: Address{Street: "Marktplatz 1", PostalCode: "8952", City: "Schlieren"},
		},
		{
			name: "Country name after city is dropped",
			text: "Kirchplatz, 8952 Schlieren Schweiz",
			want: Address{Street: "Kirchplatz", PostalCode: "8952", City: "Schlieren"},
		},
		{
			name: "Country as trailing segment is ignored",
			text: "Badenerstrasse 2, 8952 Schlieren, Schweiz",
			want: Address{Street: "Badenerstrasse 2", PostalCode: "8952", City: "Schlieren"},
		},
		{
			name: "No postal code falls back to last segment",
			text: "Bahnhofstrasse 12, Dietikon",
			want: Address{Street: "Bahnhofstrasse 12", City: "Dietikon"},
		},
		{
			name: "Bare locality",
			text: "Schlieren",
			want: Address{City: "Schlieren"},
		},
		{
			name: "Bare street keeps house number",
			text: "Kirchgasse 5",
			want: Address{Street: "Kirchgasse 5"},
		},
		{
			name: "Hyphenated locality",
			text: "2300 La Chaux-de-Fonds",
			want: Address{PostalCode: "2300", City: "La Chaux-de-Fonds"},
		},
		{
			name: "Messy whitespace",
			text: "  Marktplatz 1,\n 8952   Schlieren ",
			want: Address{Street: "Marktplatz 1", PostalCode: "8952", City: "Schlieren"},
		},
		{
			name: "Empty input",
			text: "",
			want: Address{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAddress(tt.text)
			if got != tt.want {
				t.Errorf("SplitAddress(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}
