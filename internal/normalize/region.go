package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// regionAliases maps lowercased region spellings to their canonical
// display form. Substring matching tolerates the free-text garbage the
// source trackers accumulate ("canda", " CANADA ", "uk").
var regionAliases = []struct {
	Substring string
	Canonical string
}{
	{"north america", "NAM"},
	{"nam", "NAM"},
	{"emea", "EMEA"},
	{"europe", "EMEA"},
	{"asia pacific", "APAC"},
	{"apac", "APAC"},
	{"latin america", "LATAM"},
	{"latam", "LATAM"},
	{"united kingdom", "United Kingdom"},
	{"uk", "United Kingdom"},
	// "canda" is a recurring tracker typo.
	{"canada", "Canada"},
	{"canda", "Canada"},
}

var titleCaser = cases.Title(language.English)

// CanonicalRegion maps free-text region input into its fixed display
// form. Unmatched values are title-cased and kept so unexpected
// vocabulary stays visible in aggregates instead of vanishing into an
// "Unknown" bucket.
func CanonicalRegion(raw string) string {
	s := strings.ToLower(strings.TrimSpace(stripDiacritics(raw)))
	if s == "" {
		return ""
	}

	for _, alias := range regionAliases {
		if strings.Contains(s, alias.Substring) {
			return alias.Canonical
		}
	}

	return titleCaser.String(s)
}

// stripDiacritics removes accents by NFD-decomposing the string and
// dropping combining marks.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
