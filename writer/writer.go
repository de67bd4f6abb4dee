// Package writer builds the exported document. An Overlay imports
// every page of the source PDF as a template, then exposes the drawing
// surface the edit applicator needs: cover rectangles, font embedding
// and baseline text in top-down page coordinates.
package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
)

// PageDim is one page's size in document units.
type PageDim struct {
	Width  float64
	Height float64
}

// Overlay wraps a document rebuilt page-by-page from an existing PDF,
// ready for drawing on top of the imported content. It implements the
// DocumentWriter contract consumed by the apply package.
type Overlay struct {
	pdf      *fpdf.Fpdf
	pages    int
	embedded map[string]bool
}

// NewOverlay imports every page of src (a complete PDF document) into
// a fresh document of the given per-page dimensions. dims must have
// one entry per source page.
func NewOverlay(src []byte, dims []PageDim) (*Overlay, error) {
	if !bytes.HasPrefix(src, []byte("%PDF-")) {
		return nil, errors.New("source is not a PDF document")
	}
	if len(dims) == 0 {
		return nil, errors.New("no page dimensions given")
	}

	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(src))

	for i, dim := range dims {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: dim.Width, Ht: dim.Height})
		if err := importPage(pdf, importer, &rs, i+1, dim.Width); err != nil {
			return nil, err
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to import page %d: %w", i+1, err)
		}
	}

	return &Overlay{
		pdf:      pdf,
		pages:    len(dims),
		embedded: make(map[string]bool),
	}, nil
}

// importPage pulls one source page in as a template. The importer
// panics instead of setting the document error on sources it cannot
// parse (encrypted files, compressed cross-reference streams), so the
// call is recovered into an ordinary error.
func importPage(pdf *fpdf.Fpdf, importer *gofpdi.Importer, rs *io.ReadSeeker, page int, width float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to import page %d: %v", page, r)
		}
	}()
	tpl := importer.ImportPageFromStream(pdf, rs, page, "/MediaBox")
	importer.UseImportedTemplate(pdf, tpl, 0, 0, width, 0)
	return nil
}

// PageCount returns the number of imported pages.
func (o *Overlay) PageCount() int {
	return o.pages
}

// SelectPage makes the given page (1-based) current for drawing.
func (o *Overlay) SelectPage(page int) error {
	if page < 1 || page > o.pages {
		return fmt.Errorf("page %d out of range [1, %d]", page, o.pages)
	}
	o.pdf.SetPage(page)
	return o.pdf.Error()
}

// EmbedFont registers a font binary for SetFont. Re-embedding an
// already registered family is a no-op. A rejected binary leaves the
// document usable: the underlying error state is cleared so a
// substitute font can still be selected.
func (o *Overlay) EmbedFont(family, style string, data []byte) error {
	key := family + "/" + style
	if o.embedded[key] {
		return nil
	}
	o.pdf.AddUTF8FontFromBytes(family, style, data)
	if err := o.pdf.Error(); err != nil {
		o.pdf.ClearError()
		return fmt.Errorf("failed to embed font %s: %w", family, err)
	}
	o.embedded[key] = true
	return nil
}

// SetFont selects the current font; family is either an embedded
// registration name or a built-in standard family.
func (o *Overlay) SetFont(family, style string, size float64) error {
	o.pdf.SetFont(family, style, size)
	if err := o.pdf.Error(); err != nil {
		o.pdf.ClearError()
		return fmt.Errorf("failed to select font %s: %w", family, err)
	}
	return nil
}

// SetTextColor sets the current text color.
func (o *Overlay) SetTextColor(r, g, b int) {
	o.pdf.SetTextColor(r, g, b)
}

// SetFillColor sets the current rectangle fill color.
func (o *Overlay) SetFillColor(r, g, b int) {
	o.pdf.SetFillColor(r, g, b)
}

// FillRect paints a filled rectangle at (x, y) in top-down page space.
func (o *Overlay) FillRect(x, y, w, h float64) {
	o.pdf.Rect(x, y, w, h, "F")
}

// DrawText draws text with its baseline at y.
func (o *Overlay) DrawText(x, y float64, text string) {
	o.pdf.Text(x, y, text)
}

// TextWidth measures text in the current font at the current size.
func (o *Overlay) TextWidth(text string) float64 {
	return o.pdf.GetStringWidth(text)
}

// Bytes serializes the document.
func (o *Overlay) Bytes() ([]byte, error) {
	if err := o.pdf.Error(); err != nil {
		return nil, fmt.Errorf("document is in error state: %w", err)
	}
	var buf bytes.Buffer
	if err := o.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return buf.Bytes(), nil
}
