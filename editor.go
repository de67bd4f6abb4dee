package pdfeditor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/declared-as-ala/PDF-editor/apply"
	"github.com/declared-as-ala/PDF-editor/fontid"
	"github.com/declared-as-ala/PDF-editor/fontreg"
	"github.com/declared-as-ala/PDF-editor/layout"
	"github.com/declared-as-ala/PDF-editor/model"
	"github.com/declared-as-ala/PDF-editor/ocr"
	"github.com/declared-as-ala/PDF-editor/sampler"
	"github.com/declared-as-ala/PDF-editor/writer"
)

// Editor is a stateful editing session over one document: it extracts
// regions page by page, accumulates text and style edits, and exports
// them as a new document. An Editor is safe for concurrent use; when
// page extractions race, the newest one wins and stale results are
// discarded with a warning.
type Editor struct {
	source     GlyphSource
	rasterizer sampler.PageRasterizer
	samplerCfg sampler.Config
	registry   *fontreg.Registry
	clusterer  *layout.Clusterer

	// version orders concurrent page extractions.
	version atomic.Int64

	mu         sync.Mutex
	session    *model.EditSession
	warnings   []Warning
	activePage int
	regions    []model.Region
	pageRuns   []model.GlyphRun
	fontsDone  map[int]bool
}

// Registry exposes the editor's font registry, letting callers
// pre-register fonts or inspect resolution results.
func (e *Editor) Registry() *fontreg.Registry {
	return e.registry
}

// PageCount returns the document's page count.
func (e *Editor) PageCount() int {
	return e.source.PageCount()
}

// CurrentPage returns the page whose regions are currently extracted,
// or 0 before the first extraction.
func (e *Editor) CurrentPage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activePage
}

// Regions extracts the editable regions of a page and makes that page
// current. Decoding, color sampling and clustering run outside the
// editor lock; if a newer extraction started while this one was
// running, its result is discarded with a warning and nil regions are
// returned.
func (e *Editor) Regions(ctx context.Context, page int) ([]model.Region, error) {
	if page < 1 || page > e.source.PageCount() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", page, e.source.PageCount())
	}
	v := e.version.Add(1)

	runs, err := e.source.GlyphRuns(page)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page %d: %w", page, err)
	}

	e.registerPageFonts(page)

	for i := range runs {
		id := fontid.Parse(runs[i].RawFontName)
		runs[i].FontFamily = id.Family
		runs[i].FontWeight = id.Weight
		runs[i].FontStyle = id.Style
	}

	e.sampleColors(ctx, page, runs)

	regions := e.clusterer.Cluster(runs, page)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.version.Load() != v {
		e.warnings = append(e.warnings, Warning{
			Page: page, Op: "extract",
			Message: "discarded stale extraction superseded by a newer page render",
		})
		return nil, nil
	}
	e.activePage = page
	e.regions = regions
	e.pageRuns = runs
	return regions, nil
}

// Activate resolves a region of the current page into its editable
// TextItem. Activating an already active region keeps the pending
// edits intact. The returned item is a copy; mutate edits through the
// Set* methods.
func (e *Editor) Activate(ctx context.Context, id string) (*model.TextItem, error) {
	e.mu.Lock()
	if item := e.session.Get(id); item != nil {
		cp := *item
		e.mu.Unlock()
		return &cp, nil
	}
	region, ok := e.findRegion(id)
	runs := e.pageRuns
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown region %q: only regions of the current page can be activated", id)
	}

	refined := e.clusterer.Refine(runs, region)

	item := &model.TextItem{
		Text:   refined.Text,
		X:      region.BBox.X,
		Y:      region.BBox.Y,
		Width:  region.BBox.Width,
		Height: region.BBox.Height,
		Page:   region.Page,
	}
	if len(refined.Runs) > 0 {
		first := refined.Runs[0]
		item.FontSize = first.FontSize
		item.FontFamily = first.FontFamily
		item.FontWeight = first.FontWeight
		item.FontStyle = first.FontStyle
		item.Color = first.Color
		item.OriginalFontName = first.RawFontName
	}
	if item.Text == "" {
		item.Text = e.recoverText(ctx, region)
	}
	item.EnsureFontDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()
	// A concurrent Activate may have won the race.
	if existing := e.session.Get(id); existing != nil {
		cp := *existing
		return &cp, nil
	}
	e.session.Set(id, item)
	cp := *item
	return &cp, nil
}

// findRegion looks up an extracted region of the current page. Callers
// must hold e.mu.
func (e *Editor) findRegion(id string) (model.Region, bool) {
	for _, r := range e.regions {
		if r.ID == id {
			return r, true
		}
	}
	return model.Region{}, false
}

// recoverText attempts OCR recovery for a region whose content stream
// decoded to nothing. Failures degrade to empty text with a warning.
func (e *Editor) recoverText(ctx context.Context, region model.Region) string {
	if e.rasterizer == nil {
		return ""
	}
	client, err := ocr.New()
	if err != nil {
		e.warn(region.Page, "ocr", err.Error())
		return ""
	}
	defer client.Close()

	img, err := e.rasterizer.Rasterize(ctx, region.Page, e.samplerCfg.SuperSample)
	if err != nil {
		e.warn(region.Page, "rasterize", err.Error())
		return ""
	}
	text, err := client.RecognizeRegion(img, region.BBox, e.samplerCfg.SuperSample)
	if err != nil {
		e.warn(region.Page, "ocr", err.Error())
		return ""
	}
	return text
}

// sampleColors fills each run's ink color from the page raster, or the
// default when no rasterizer is configured or rendering fails.
func (e *Editor) sampleColors(ctx context.Context, page int, runs []model.GlyphRun) {
	if e.rasterizer == nil {
		for i := range runs {
			runs[i].Color = model.DefaultColor
		}
		return
	}
	img, err := e.rasterizer.Rasterize(ctx, page, e.samplerCfg.SuperSample)
	if err != nil {
		e.warn(page, "rasterize", err.Error())
		for i := range runs {
			runs[i].Color = model.DefaultColor
		}
		return
	}
	for i := range runs {
		window := sampler.WindowForRun(runs[i], e.samplerCfg.SuperSample)
		runs[i].Color = sampler.SampleWithConfig(img, window, e.samplerCfg)
	}
}

// registerPageFonts feeds a page's embedded font programs into the
// registry so export-time resolution can reuse the document's own
// fonts. Each page is processed once.
func (e *Editor) registerPageFonts(page int) {
	ffs, ok := e.source.(FontFileSource)
	if !ok {
		return
	}
	e.mu.Lock()
	done := e.fontsDone[page]
	e.fontsDone[page] = true
	e.mu.Unlock()
	if done {
		return
	}

	files, err := ffs.FontFiles(page)
	if err != nil {
		e.warn(page, "fonts", err.Error())
		return
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.registry.Register(name, files[name], fontreg.SourceDocument)
	}
}

func (e *Editor) warn(page int, op, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.warnings = append(e.warnings, Warning{Page: page, Op: op, Message: message})
}

// Warnings returns the warnings accumulated so far.
func (e *Editor) Warnings() []Warning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Warning(nil), e.warnings...)
}

// edit runs fn against the pending edit for a region, which must have
// been activated first. The lock is held across the mutation so
// concurrent setters and exports never see a half-applied edit.
func (e *Editor) edit(id string, fn func(*model.TextItem)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	item := e.session.Get(id)
	if item == nil {
		return fmt.Errorf("region %q has not been activated", id)
	}
	fn(item)
	return nil
}

// SetText replaces a region's text. Font identity, size, color and
// alignment all carry over unchanged.
func (e *Editor) SetText(id, text string) error {
	return e.edit(id, func(item *model.TextItem) {
		item.Text = text
	})
}

// SetFontFamily overrides a region's font family.
func (e *Editor) SetFontFamily(id, family string) error {
	if family == "" {
		return fmt.Errorf("font family must not be empty")
	}
	return e.edit(id, func(item *model.TextItem) {
		item.FontFamily = family
	})
}

// SetFontWeight overrides a region's numeric font weight (100-900).
func (e *Editor) SetFontWeight(id string, weight int) error {
	if weight < 100 || weight > 900 {
		return fmt.Errorf("font weight %d out of range [100, 900]", weight)
	}
	return e.edit(id, func(item *model.TextItem) {
		item.FontWeight = weight
	})
}

// SetFontStyle sets a region's style to "normal" or "italic".
func (e *Editor) SetFontStyle(id, style string) error {
	if style != "normal" && style != "italic" {
		return fmt.Errorf("invalid font style %q", style)
	}
	return e.edit(id, func(item *model.TextItem) {
		item.FontStyle = style
	})
}

// SetFontSize sets a region's font size in document units.
func (e *Editor) SetFontSize(id string, size float64) error {
	if size <= 0 {
		return fmt.Errorf("font size must be positive, got %v", size)
	}
	return e.edit(id, func(item *model.TextItem) {
		item.FontSize = size
	})
}

// SetColor sets a region's ink color as a CSS rgb() string. The value
// is parsed leniently at export; unparseable values render black.
func (e *Editor) SetColor(id, color string) error {
	return e.edit(id, func(item *model.TextItem) {
		item.Color = color
	})
}

// SetAlignment sets a region's alignment: "left", "center" or "right".
func (e *Editor) SetAlignment(id, alignment string) error {
	switch alignment {
	case "left", "center", "right":
	default:
		return fmt.Errorf("invalid alignment %q", alignment)
	}
	return e.edit(id, func(item *model.TextItem) {
		item.Alignment = alignment
	})
}

// SetDecoration sets a region's decoration: "none", "underline" or
// "line-through".
func (e *Editor) SetDecoration(id, decoration string) error {
	switch decoration {
	case "none", "underline", "line-through":
	default:
		return fmt.Errorf("invalid decoration %q", decoration)
	}
	return e.edit(id, func(item *model.TextItem) {
		item.Decoration = decoration
	})
}

// Reset discards all pending edits.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Clear()
}

// Export applies all pending edits on top of the original document and
// returns the result. The source document is never modified; regions
// without edits are byte-for-byte untouched content imported from it.
func (e *Editor) Export(ctx context.Context) ([]byte, []Warning, error) {
	dims := make([]writer.PageDim, e.source.PageCount())
	for i := range dims {
		w, h, err := e.source.PageSize(i + 1)
		if err != nil {
			return nil, e.Warnings(), fmt.Errorf("failed to read page %d size: %w", i+1, err)
		}
		dims[i] = writer.PageDim{Width: w, Height: h}
	}

	overlay, err := writer.NewOverlay(e.source.Source(), dims)
	if err != nil {
		return nil, e.Warnings(), err
	}

	e.mu.Lock()
	session := e.session.Snapshot()
	e.mu.Unlock()

	out, err := apply.New(e.registry).Apply(ctx, overlay, session)
	if err != nil {
		return nil, e.Warnings(), err
	}
	return out, e.Warnings(), nil
}

// ExportFile exports to a file. An empty path writes
// edited_YYYYMMDD_HHMMSS.pdf in the working directory. The written
// path is returned.
func (e *Editor) ExportFile(ctx context.Context, path string) (string, []Warning, error) {
	if path == "" {
		path = fmt.Sprintf("edited_%s.pdf", time.Now().Format("20060102_150405"))
	}
	out, warnings, err := e.Export(ctx)
	if err != nil {
		return "", warnings, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", warnings, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, warnings, nil
}

// FontExtractor extracts embedded font programs from a whole document,
// keyed by base font name. It exists for callers that delegate font
// extraction to an external service with a richer decoder.
type FontExtractor interface {
	ExtractFonts(ctx context.Context, document []byte) (map[string][]byte, error)
}

// LoadDocumentFonts registers every font the extractor finds in the
// document, making them available to resolution before any page has
// been extracted.
func (e *Editor) LoadDocumentFonts(ctx context.Context, x FontExtractor) error {
	fonts, err := x.ExtractFonts(ctx, e.source.Source())
	if err != nil {
		return fmt.Errorf("font extraction failed: %w", err)
	}
	names := make([]string, 0, len(fonts))
	for name := range fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.registry.Register(name, fonts[name], fontreg.SourceDocument)
	}
	return nil
}
