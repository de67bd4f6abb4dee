// Package fontid recovers a clean font identity (family, weight, style)
// from the raw font names embedded in a document.
//
// Document-authoring tools prepend a subset prefix to embedded font
// names - six uppercase ASCII letters followed by "+" - and encode the
// weight and style as name suffixes rather than structured attributes.
// A raw name like "ABCDEF+Rubik-Medium" therefore identifies the Rubik
// family at weight 500, and "QRSTUV+TimesNewRomanPS-BoldItalicMT"
// identifies a bold italic. This package parses those conventions so
// that later resolution stages can key by clean names (web catalogs)
// while the original raw name is retained for exact-match lookups.
package fontid

import (
	"regexp"
	"strings"
)

// DefaultFamily is the family reported when nothing usable remains
// after stripping style and weight tokens from a raw name.
const DefaultFamily = "Helvetica"

// Identity is the recovered identity of an embedded font reference.
type Identity struct {
	// RawName is the original embedded name, subset prefix included.
	RawName string

	// CleanName is the raw name with any subset prefix stripped.
	CleanName string

	// Family is the clean name with style and weight tokens removed.
	Family string

	// Weight is the numeric weight (100-900, default 400).
	Weight int

	// Style is "normal" or "italic".
	Style string
}

// subsetPrefix matches the 6-uppercase-letter subset tag that
// authoring tools prepend to embedded font names.
var subsetPrefix = regexp.MustCompile(`^[A-Z]{6}\+`)

// weightToken pairs a name keyword with its numeric weight. Order
// matters: more specific tokens are listed before their substrings so
// that "extrabold" is not read as "bold" and "ultralight" is not read
// as "light".
type weightToken struct {
	keyword string
	weight  int
}

var weightTokens = []weightToken{
	{"extralight", 200},
	{"ultralight", 200},
	{"extrabold", 800},
	{"ultrabold", 800},
	{"semibold", 600},
	{"demibold", 600},
	{"black", 900},
	{"heavy", 900},
	{"light", 300},
	{"medium", 500},
	{"bold", 700},
	{"thin", 100},
}

var styleTokens = []string{"italic", "oblique"}

// Parse recovers a clean family name, weight and style from a raw
// embedded font name. It never fails: degenerate input falls back to
// DefaultFamily at weight 400.
func Parse(rawName string) Identity {
	clean := subsetPrefix.ReplaceAllString(rawName, "")
	lower := strings.ToLower(clean)

	id := Identity{
		RawName:   rawName,
		CleanName: clean,
		Weight:    400,
		Style:     "normal",
	}

	var matched []string

	for _, tok := range styleTokens {
		if strings.Contains(lower, tok) {
			id.Style = "italic"
			matched = append(matched, tok)
		}
	}

	for _, wt := range weightTokens {
		if strings.Contains(lower, wt.keyword) {
			id.Weight = wt.weight
			matched = append(matched, wt.keyword)
			break
		}
	}

	id.Family = deriveFamily(clean, matched)
	return id
}

// deriveFamily strips every matched style/weight token from the clean
// name, cuts at the first comma or hyphen separator (so
// "Inter-Regular" and "Arial, sans-serif" both yield their base
// family), and finally falls back to DefaultFamily.
func deriveFamily(clean string, matched []string) string {
	family := clean
	for _, tok := range matched {
		family = stripToken(family, tok)
	}
	family = strings.Trim(family, "- ")

	if i := strings.IndexAny(family, ",-"); i > 0 {
		family = strings.Trim(family[:i], "- ")
	}
	if family == "" {
		if i := strings.IndexAny(clean, ",-"); i > 0 {
			family = strings.Trim(clean[:i], "- ")
		}
	}
	if family == "" {
		family = DefaultFamily
	}
	return family
}

// stripToken removes every case-insensitive occurrence of tok from s.
func stripToken(s, tok string) string {
	lower := strings.ToLower(s)
	for {
		i := strings.Index(lower, tok)
		if i < 0 {
			return s
		}
		s = s[:i] + s[i+len(tok):]
		lower = lower[:i] + lower[i+len(tok):]
	}
}
