package normalize

import "testing"

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Herbstmarkt   Schlieren ", "Herbstmarkt Schlieren"},
		{"mehrere\n\tZeilen\nText", "mehrere Zeilen Text"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := CollapseSpace(tt.in); got != tt.want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "Short string unchanged", in: "kurz", limit: 10, want: "kurz"},
		{name: "Exact length unchanged", in: "zwölf", limit: 5, want: "zwölf"},
		{name: "Truncated with ellipsis", in: "abcdefgh", limit: 5, want: "abcd…"},
		{name: "Umlauts count as one rune", in: "ääääää", limit: 4, want: "äää…"},
		{name: "Zero limit disables truncation", in: "abcdefgh", limit: 0, want: "abcdefgh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	got := CollapseSpace(StripTags("<p>Musik <b>und</b> Tanz</p>"))
	if got != "Musik und Tanz" {
		t.Errorf("StripTags = %q, want %q", got, "Musik und Tanz")
	}
}
