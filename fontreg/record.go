package fontreg

import (
	"fmt"
	"strings"
)

// Source tags where a font record's data came from.
type Source int

const (
	// SourceDocument marks a font registered from the document itself
	// (e.g. extracted by a remote font-extraction service).
	SourceDocument Source = iota

	// SourceCatalog marks a font downloaded from the web font catalog.
	SourceCatalog

	// SourceStandard marks a built-in standard substitute.
	SourceStandard
)

// String returns a human-readable source tag.
func (s Source) String() string {
	switch s {
	case SourceDocument:
		return "document"
	case SourceCatalog:
		return "web-catalog"
	case SourceStandard:
		return "standard-substitute"
	default:
		return "unknown"
	}
}

// Key uniquely identifies a font record within a registry. Keys are
// unique per (family, weight, style) triple; the family is compared
// case-insensitively.
type Key struct {
	Family string
	Weight int
	Style  string
}

// KeyOf builds a normalized key.
func KeyOf(family string, weight int, style string) Key {
	return Key{
		Family: strings.ToLower(strings.TrimSpace(family)),
		Weight: weight,
		Style:  style,
	}
}

// FontRecord is a resolved, cacheable font. Records live for the
// document session and are discarded when the document closes.
type FontRecord struct {
	// RawName is the original embedded reference this record was
	// registered under, if any (subset prefix included).
	RawName string

	// CleanName is the raw name with any subset prefix stripped.
	CleanName string

	// Family is the clean family name.
	Family string

	// Style is "normal" or "italic".
	Style string

	// Weight is the numeric weight, 100-900.
	Weight int

	// Source tags where the data came from.
	Source Source

	// Data is the raw font binary. Nil for standard substitutes, in
	// which case Standard names the built-in font to use.
	Data []byte

	// Standard is the built-in base font name ("Helvetica", "Times",
	// "Courier") for records without binary data.
	Standard string

	// Valid reports whether Data parsed as a usable font. Validation
	// happens once, at registration; it is never repeated.
	Valid bool
}

// Key returns the record's registry key.
func (r *FontRecord) Key() Key {
	return KeyOf(r.Family, r.Weight, r.Style)
}

// ResolutionError reports that no tier could produce a usable font.
// It is only reachable when standard substitutes are disallowed.
type ResolutionError struct {
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no font could be resolved for %q", e.Name)
}
