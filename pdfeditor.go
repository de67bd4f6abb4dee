// Package pdfeditor extracts editable text regions from PDF documents
// and exports font-preserving edits.
//
// Basic usage:
//
//	ed, err := pdfeditor.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	regions, err := ed.Regions(ctx, 1)
//	if err != nil {
//	    // handle error
//	}
//	item, err := ed.Activate(ctx, regions[0].ID)
//	if err != nil {
//	    // handle error
//	}
//	ed.SetText(regions[0].ID, "Replacement text")
//	out, warnings, err := ed.Export(ctx)
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfeditor.FormatWarnings(warnings))
//	}
//
// The lower-level packages (reader, layout, fontreg, apply, writer) are
// also available for advanced use.
package pdfeditor

import (
	"github.com/declared-as-ala/PDF-editor/fontreg"
	"github.com/declared-as-ala/PDF-editor/layout"
	"github.com/declared-as-ala/PDF-editor/model"
	"github.com/declared-as-ala/PDF-editor/reader"
	"github.com/declared-as-ala/PDF-editor/sampler"
)

// GlyphSource is the read-side contract the editor consumes. The
// reader package provides the standard implementation; tests and
// alternative decoders can supply their own.
type GlyphSource interface {
	// Source returns the original document bytes, used as the export
	// base.
	Source() []byte

	// PageCount returns the number of pages.
	PageCount() int

	// PageSize returns a page's dimensions in document units.
	PageSize(page int) (w, h float64, err error)

	// GlyphRuns decodes a page into glyph runs in top-down page space.
	GlyphRuns(page int) ([]model.GlyphRun, error)
}

// FontFileSource is optionally implemented by glyph sources that can
// hand out a page's embedded font programs, keyed by base font name.
type FontFileSource interface {
	FontFiles(page int) (map[string][]byte, error)
}

// Option configures an Editor at construction time.
type Option func(*Editor)

// WithRasterizer provides a page renderer, enabling ink color sampling
// and OCR text recovery. Without one, extracted regions default to
// black ink and undecodable text stays empty.
func WithRasterizer(r sampler.PageRasterizer) Option {
	return func(e *Editor) { e.rasterizer = r }
}

// WithCatalog provides a web font catalog consulted when a document
// font has no embedded program and no similar registered font.
func WithCatalog(c fontreg.Catalog) Option {
	return func(e *Editor) {
		e.registry = fontreg.NewRegistry(fontreg.WithCatalog(c))
	}
}

// WithClusterConfig overrides the region clustering tolerances.
func WithClusterConfig(cfg layout.ClusterConfig) Option {
	return func(e *Editor) { e.clusterer = layout.NewClustererWithConfig(cfg) }
}

// WithSamplerConfig overrides the color sampling thresholds.
func WithSamplerConfig(cfg sampler.Config) Option {
	return func(e *Editor) { e.samplerCfg = cfg }
}

// Must wraps a call returning (T, error) and panics on error. It is
// intended for scripts and tests where error handling would be
// cumbersome.
//
// Example:
//
//	ed := pdfeditor.Must(pdfeditor.Open("document.pdf"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Open opens a PDF file for editing.
func Open(path string, opts ...Option) (*Editor, error) {
	doc, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	return FromSource(doc, opts...), nil
}

// FromBytes opens a PDF held in memory for editing.
func FromBytes(data []byte, opts ...Option) (*Editor, error) {
	doc, err := reader.FromBytes(data)
	if err != nil {
		return nil, err
	}
	return FromSource(doc, opts...), nil
}

// FromSource creates an editor over an already-open glyph source.
func FromSource(src GlyphSource, opts ...Option) *Editor {
	e := &Editor{
		source:     src,
		registry:   fontreg.NewRegistry(),
		clusterer:  layout.NewClusterer(),
		samplerCfg: sampler.DefaultConfig(),
		session:    model.NewEditSession(),
		fontsDone:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
