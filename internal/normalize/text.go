package normalize

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// CollapseSpace trims a string and collapses runs of whitespace, including
// newlines and tabs, into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripTags removes anything that looks like an HTML tag. It is a crude
// fallback for when proper HTML conversion fails, not a sanitizer.
func StripTags(s string) string {
	return tagRe.ReplaceAllString(s, " ")
}

// Truncate shortens s to at most limit runes, appending an ellipsis when
// something was cut. A limit of zero or less returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := runes[:limit-1]
	return strings.TrimRight(string(cut), " \t\n") + "…"
}
