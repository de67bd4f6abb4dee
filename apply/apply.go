// Package apply rewrites edited regions into a document.
//
// The applicator consumes an edit session and a [DocumentWriter] (the
// contract over an external document-manipulation library): for each
// edited region it paints an opaque cover rectangle over the original
// glyphs, resolves the region's font through the registry's fallback
// chain, and redraws the replacement text at the original baseline.
// Regions without edits are left completely untouched, so the output
// is visually identical to the source everywhere else.
package apply

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/declared-as-ala/PDF-editor/fontid"
	"github.com/declared-as-ala/PDF-editor/fontreg"
	"github.com/declared-as-ala/PDF-editor/model"
)

// DocumentWriter is the mutation contract consumed by the applicator.
// Implementations wrap an external document-manipulation library. All
// coordinates are top-down page space in document units; DrawText's y
// is the text baseline.
type DocumentWriter interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// SelectPage makes the given page (1-based) current for drawing.
	SelectPage(page int) error

	// EmbedFont registers a font binary under a family name for later
	// SetFont calls. Embedding the same family twice is a no-op.
	EmbedFont(family, style string, data []byte) error

	// SetFont selects the current font. For built-in standard fonts,
	// style may combine "B", "I" and "U".
	SetFont(family, style string, size float64) error

	SetTextColor(r, g, b int)
	SetFillColor(r, g, b int)

	// FillRect paints a filled rectangle with the current fill color.
	FillRect(x, y, w, h float64)

	// DrawText draws text at (x, baseline) with the current font and
	// text color.
	DrawText(x, y float64, text string)

	// TextWidth measures text in the current font at the current size.
	TextWidth(text string) float64

	// Bytes serializes the document.
	Bytes() ([]byte, error)
}

// Config holds the applicator's drawing parameters.
type Config struct {
	// CoverMargin inflates each cover rectangle on all sides so that
	// anti-aliased edges of the original glyphs are fully occluded
	// (default: 2 units).
	CoverMargin float64

	// CoverColor is the cover rectangle fill (default: white).
	CoverColor [3]int
}

// DefaultConfig returns the default drawing parameters.
func DefaultConfig() Config {
	return Config{
		CoverMargin: 2,
		CoverColor:  [3]int{255, 255, 255},
	}
}

// Applicator rewrites edited regions using fonts resolved through a
// per-document registry.
type Applicator struct {
	registry *fontreg.Registry
	config   Config
}

// New creates an applicator with default configuration.
func New(registry *fontreg.Registry) *Applicator {
	return NewWithConfig(registry, DefaultConfig())
}

// NewWithConfig creates an applicator with custom drawing parameters.
func NewWithConfig(registry *fontreg.Registry, config Config) *Applicator {
	return &Applicator{registry: registry, config: config}
}

// Apply rewrites every edited region in the session and serializes the
// result. Font failures are contained to their region (the nearest
// standard substitute is used); only structural errors - an
// unreachable page, a failed serialization - abort the export, in
// which case no bytes are returned and the source is untouched.
func (a *Applicator) Apply(ctx context.Context, w DocumentWriter, session *model.EditSession) ([]byte, error) {
	for _, id := range session.IDs() {
		item := session.Get(id)
		if err := a.applyItem(ctx, w, item); err != nil {
			return nil, fmt.Errorf("failed to apply edit %s: %w", id, err)
		}
	}
	return w.Bytes()
}

func (a *Applicator) applyItem(ctx context.Context, w DocumentWriter, item *model.TextItem) error {
	if item.Page < 1 || item.Page > w.PageCount() {
		return fmt.Errorf("page %d out of range", item.Page)
	}
	if err := w.SelectPage(item.Page); err != nil {
		return err
	}

	// Cover the original glyphs, margin included.
	cc := a.config.CoverColor
	cover := model.BBox{X: item.X, Y: item.Y, Width: item.Width, Height: item.Height}.
		Expand(a.config.CoverMargin)
	w.SetFillColor(cc[0], cc[1], cc[2])
	w.FillRect(cover.X, cover.Y, cover.Width, cover.Height)

	if item.Text == "" {
		// A cleared region stays covered; nothing to draw.
		return nil
	}

	rec, err := a.registry.Resolve(ctx, resolveName(item), item.FontStyle, item.FontWeight)
	if err != nil {
		rec = a.registry.StandardSubstitute(item.FontFamily, item.FontStyle, item.FontWeight)
	}

	if err := a.selectFont(w, rec, item); err != nil {
		// Embedding failed (bad binary, writer rejection): one broken
		// font must not block the rest of the export.
		rec = a.registry.StandardSubstitute(item.FontFamily, item.FontStyle, item.FontWeight)
		if err := a.selectFont(w, rec, item); err != nil {
			return err
		}
	}

	textW := a.measureText(w, rec, item)

	x := item.X
	switch item.Alignment {
	case "center":
		x += (item.Width - textW) / 2
	case "right":
		x += item.Width - textW
	}

	r, g, b := parseColor(item.Color)
	w.SetTextColor(r, g, b)

	baseline := item.Y + item.FontSize
	w.DrawText(x, baseline, item.Text)

	if item.Decoration == "line-through" {
		thickness := item.FontSize * 0.05
		if thickness < 0.5 {
			thickness = 0.5
		}
		w.SetFillColor(r, g, b)
		w.FillRect(x, baseline-item.FontSize*0.3, textW, thickness)
	}
	return nil
}

// selectFont embeds the record's binary (or picks the built-in
// standard font) and makes it current.
func (a *Applicator) selectFont(w DocumentWriter, rec *fontreg.FontRecord, item *model.TextItem) error {
	var family, style string

	switch {
	case len(rec.Data) > 0 && rec.Valid:
		family = embeddedFamilyName(rec)
		if err := w.EmbedFont(family, "", rec.Data); err != nil {
			return err
		}
	case rec.Standard != "":
		family = rec.Standard
		if rec.Weight >= 700 {
			style += "B"
		}
		if rec.Style == "italic" {
			style += "I"
		}
	default:
		return fmt.Errorf("record %q has no usable data", rec.Family)
	}

	if item.Decoration == "underline" {
		style += "U"
	}

	return w.SetFont(family, style, item.FontSize)
}

// measureText returns the replacement text's width: from the embedded
// binary's own metrics when available, else from the writer's current
// font.
func (a *Applicator) measureText(w DocumentWriter, rec *fontreg.FontRecord, item *model.TextItem) float64 {
	if len(rec.Data) > 0 && rec.Valid {
		if width, err := measureWidth(rec.Data, item.Text, item.FontSize); err == nil {
			return width
		}
	}
	return w.TextWidth(item.Text)
}

// embeddedFamilyName derives the writer-side registration name for an
// embedded binary. Weight and style are part of the name so distinct
// variants of one family do not collide.
func embeddedFamilyName(rec *fontreg.FontRecord) string {
	name := fmt.Sprintf("%s-%d", strings.ReplaceAll(rec.Family, " ", ""), rec.Weight)
	if rec.Style == "italic" {
		name += "i"
	}
	return name
}

var colorPattern = regexp.MustCompile(`rgb\((\d+),\s*(\d+),\s*(\d+)\)`)

// parseColor reads a CSS rgb() string leniently; anything unparseable
// is black.
func parseColor(s string) (int, int, int) {
	m := colorPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0
	}
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	if r > 255 || g > 255 || b > 255 {
		return 0, 0, 0
	}
	return r, g, b
}

// resolveName prefers the original embedded font name so export-time
// resolution can hit exact-match records registered from the document;
// an item whose family was edited by the user resolves by that family
// instead.
func resolveName(item *model.TextItem) string {
	if item.OriginalFontName != "" && !fontEdited(item) {
		return item.OriginalFontName
	}
	return item.FontFamily
}

// fontEdited reports whether the user picked a family different from
// the one recovered from the original name.
func fontEdited(item *model.TextItem) bool {
	if item.OriginalFontName == "" {
		return false
	}
	// Compare against the identity the original name would yield; if
	// they differ the user has overridden the family.
	id := fontid.Parse(item.OriginalFontName)
	return !strings.EqualFold(id.Family, item.FontFamily)
}
