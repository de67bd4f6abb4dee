package model

import "sort"

// DefaultFontFamily is the family assumed for text whose font identity
// could not be recovered. It matches the worst-case sans substitute used
// during font resolution, so an unidentified run still exports readably.
const DefaultFontFamily = "Helvetica"

// DefaultColor is the ink color assumed when no raster is available to
// sample, and the fallback for any out-of-bounds or empty sample window.
const DefaultColor = "rgb(0, 0, 0)"

// GlyphRun is an atomic rendered text fragment decoded from a page's
// content stream. Runs are ephemeral: a fresh set is produced every time
// a page is decoded, and they are consumed by clustering.
type GlyphRun struct {
	// Text is the decoded character content of the run.
	Text string

	// X is the left edge of the run in page space.
	X float64

	// Baseline is the Y coordinate of the text baseline (top-down).
	Baseline float64

	// Width is the advance width of the run.
	Width float64

	// Height is the nominal glyph height (usually the font size).
	Height float64

	// FontSize is the rendered font size in page units.
	FontSize float64

	// FontRef is the font name as reported by the content decoder,
	// with any subset prefix already stripped.
	FontRef string

	// RawFontName is the embedded font name from the page's font table,
	// possibly carrying a subset prefix (e.g. "ABCDEF+Rubik-Medium").
	RawFontName string

	// FontFamily, FontWeight and FontStyle are the resolved identity,
	// filled by the font identity resolver before clustering.
	FontFamily string
	FontWeight int
	FontStyle  string

	// Color is the sampled ink color as a CSS rgb() string, filled by
	// the color sampler before clustering.
	Color string
}

// Box returns the run's bounding box: the baseline shifted up by one
// font size, with height covering ascent plus a descent allowance.
func (r GlyphRun) Box() BBox {
	return BBox{
		X:      r.X,
		Y:      r.Baseline - r.FontSize,
		Width:  r.Width,
		Height: r.FontSize * 1.2,
	}
}

// Right returns the X coordinate of the run's right edge.
func (r GlyphRun) Right() float64 {
	return r.X + r.Width
}

// Region is a clustered, user-addressable rectangle of visually
// homogeneous text. The full Region list for a page is recomputed
// whenever the active page changes.
type Region struct {
	// ID uniquely identifies the region within its page render
	// (stable for a fixed page render).
	ID string

	// BBox is the region's bounding box in top-down page space.
	BBox BBox

	// Page is the owning page number (1-based).
	Page int
}

// TextItem is the resolved, editable representation of a Region's
// content. It is created lazily the first time a Region is activated
// and carries all font attributes forward across text edits: editing
// the text must never silently reset the font identity.
type TextItem struct {
	// Text is the current (possibly edited) text content.
	Text string

	// Geometry of the originating region, in top-down page space.
	X, Y, Width, Height float64

	// Page is the owning page number (1-based).
	Page int

	// FontSize is the render size in page units.
	FontSize float64

	// FontFamily is the resolved clean family name. Never empty once
	// the region has been activated.
	FontFamily string

	// FontWeight is the numeric weight, 100-900.
	FontWeight int

	// FontStyle is "normal" or "italic".
	FontStyle string

	// Color is the ink color as a CSS rgb() string; may be empty when
	// no raster was available, in which case black is used at export.
	Color string

	// Alignment is "left", "center" or "right".
	Alignment string

	// Decoration is "none", "underline" or "line-through".
	Decoration string

	// OriginalFontName is the raw embedded font name, kept so the font
	// can be re-resolved at export time (catalogs key by clean names
	// while documents key by embedded subset names).
	OriginalFontName string
}

// EnsureFontDefaults fills any missing font attributes with fixed
// defaults so that font fields are never empty after activation.
func (t *TextItem) EnsureFontDefaults() {
	if t.FontFamily == "" {
		t.FontFamily = DefaultFontFamily
	}
	if t.FontWeight == 0 {
		t.FontWeight = 400
	}
	if t.FontStyle == "" {
		t.FontStyle = "normal"
	}
	if t.Alignment == "" {
		t.Alignment = "left"
	}
	if t.Decoration == "" {
		t.Decoration = "none"
	}
	if t.FontSize <= 0 {
		t.FontSize = 12
	}
}

// EditSession maps Region IDs to their pending edits. It grows as
// regions are activated, is cleared wholesale on reset, and is consumed
// wholesale on export.
type EditSession struct {
	items map[string]*TextItem
}

// NewEditSession creates an empty edit session.
func NewEditSession() *EditSession {
	return &EditSession{items: make(map[string]*TextItem)}
}

// Get returns the TextItem for a region ID, or nil if the region has
// not been activated.
func (s *EditSession) Get(id string) *TextItem {
	return s.items[id]
}

// Set stores the TextItem for a region ID.
func (s *EditSession) Set(id string, item *TextItem) {
	s.items[id] = item
}

// Len returns the number of activated regions.
func (s *EditSession) Len() int {
	return len(s.items)
}

// Clear removes all pending edits.
func (s *EditSession) Clear() {
	s.items = make(map[string]*TextItem)
}

// Snapshot returns an independent copy of the session, so a consumer
// can walk a stable view while edits continue on the live session.
func (s *EditSession) Snapshot() *EditSession {
	cp := &EditSession{items: make(map[string]*TextItem, len(s.items))}
	for id, item := range s.items {
		c := *item
		cp.items[id] = &c
	}
	return cp
}

// IDs returns the activated region IDs in sorted order, so that
// consumers iterating the session behave deterministically.
func (s *EditSession) IDs() []string {
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
