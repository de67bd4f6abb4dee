package fontreg

import "strings"

// similarAlternates maps lowercased common families to web-catalog
// alternates with compatible metrics, tried in order by the third
// resolution tier after the family itself.
var similarAlternates = map[string][]string{
	"arial":           {"Arimo", "Roboto"},
	"helvetica":       {"Arimo", "Roboto"},
	"helvetica neue":  {"Arimo", "Roboto"},
	"times":           {"Tinos", "PT Serif"},
	"times new roman": {"Tinos", "PT Serif"},
	"georgia":         {"Gelasio", "PT Serif"},
	"garamond":        {"EB Garamond"},
	"courier":         {"Cousine", "Roboto Mono"},
	"courier new":     {"Cousine", "Roboto Mono"},
	"calibri":         {"Carlito"},
	"cambria":         {"Caladea"},
	"verdana":         {"Open Sans"},
	"tahoma":          {"Open Sans"},
}

// genericFamilies never hit the web catalog: the standard substitutes
// cover them directly.
var genericFamilies = map[string]bool{
	"georgia":    true,
	"serif":      true,
	"sans":       true,
	"sans-serif": true,
	"arial":      true,
	"helvetica":  true,
}

// bestSimilarity scores every cached record against the requested
// identity and returns the best match, or nil when no record's family
// is related at all. Scoring: 100 for an exact family match, 50 for a
// substring-overlap family match (otherwise the record is skipped),
// +20 for a style match, plus up to 10 for weight closeness (10 minus
// the weight difference divided by 100). Ties keep the
// first-registered record. Callers must hold r.mu.
func (r *Registry) bestSimilarity(family, style string, weight int) *FontRecord {
	famLower := strings.ToLower(strings.TrimSpace(family))
	if famLower == "" {
		return nil
	}

	var best *FontRecord
	bestScore := 0.0

	for _, rec := range r.records {
		recFam := strings.ToLower(rec.Family)

		var score float64
		switch {
		case recFam == famLower:
			score = 100
		case recFam != "" && (strings.Contains(recFam, famLower) || strings.Contains(famLower, recFam)):
			score = 50
		default:
			continue
		}

		if rec.Style == style {
			score += 20
		}

		diff := rec.Weight - weight
		if diff < 0 {
			diff = -diff
		}
		score += 10 - float64(diff)/100

		if score > bestScore {
			bestScore = score
			best = rec
		}
	}
	return best
}

// classifyFamily maps a family name to the nearest standard built-in:
// "Times" for serif-looking names, "Courier" for monospace-looking
// names, "Helvetica" otherwise.
func classifyFamily(family string) string {
	lower := strings.ToLower(family)

	if strings.Contains(lower, "sans") {
		return "Helvetica"
	}
	for _, hint := range []string{"mono", "courier", "consol", "code", "typewriter"} {
		if strings.Contains(lower, hint) {
			return "Courier"
		}
	}
	for _, hint := range []string{"times", "georgia", "garamond", "roman", "book", "serif", "cambria", "palatino"} {
		if strings.Contains(lower, hint) {
			return "Times"
		}
	}
	return "Helvetica"
}
