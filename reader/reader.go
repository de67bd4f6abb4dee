// Package reader decodes glyph runs and page metadata from PDF
// documents. It is the read side of the pipeline: the whole document is
// kept in memory as a byte slice, pages are decoded on demand, and all
// coordinates are converted to top-down page space on the way out.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/declared-as-ala/PDF-editor/model"
)

// ErrInvalidDocument is returned when the input is not a parseable PDF.
var ErrInvalidDocument = errors.New("invalid or corrupted document")

var header = []byte("%PDF-")

// Document is an open, read-only PDF source.
type Document struct {
	data []byte
	rd   *pdf.Reader
}

// Open reads a document from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return FromBytes(data)
}

// FromBytes opens a document held in memory. The slice is retained.
func FromBytes(data []byte) (*Document, error) {
	if len(data) < len(header) || !bytes.HasPrefix(data, header) {
		return nil, ErrInvalidDocument
	}
	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &Document{data: data, rd: rd}, nil
}

// Source returns the original document bytes.
func (d *Document) Source() []byte {
	return d.data
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.rd.NumPage()
}

// PageSize returns the page's width and height in document units,
// walking inherited attributes when the page itself carries no
// MediaBox.
func (d *Document) PageSize(page int) (w, h float64, err error) {
	if page < 1 || page > d.rd.NumPage() {
		return 0, 0, fmt.Errorf("page %d out of range [1, %d]", page, d.rd.NumPage())
	}
	p := d.rd.Page(page)
	if p.V.IsNull() {
		return 0, 0, fmt.Errorf("page %d: %w", page, ErrInvalidDocument)
	}
	box := inherited(p, "MediaBox")
	if box.IsNull() || box.Len() != 4 {
		return 0, 0, fmt.Errorf("page %d has no usable MediaBox", page)
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	return x1 - x0, y1 - y0, nil
}

// FontTable maps the page's font resource names (e.g. "F1") to their
// embedded base font names, subset prefixes included.
func (d *Document) FontTable(page int) (map[string]string, error) {
	if page < 1 || page > d.rd.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", page, d.rd.NumPage())
	}
	p := d.rd.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: %w", page, ErrInvalidDocument)
	}
	table := make(map[string]string)
	for _, name := range p.Fonts() {
		table[name] = p.Font(name).BaseFont()
	}
	return table, nil
}

// FontFiles returns the embedded font programs of a page, keyed by
// base font name. Fonts without an embedded program (the standard 14,
// externally referenced fonts) are skipped. Malformed descriptors are
// skipped rather than failing the page.
func (d *Document) FontFiles(page int) (map[string][]byte, error) {
	if page < 1 || page > d.rd.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", page, d.rd.NumPage())
	}
	p := d.rd.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: %w", page, ErrInvalidDocument)
	}

	files := make(map[string][]byte)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		base := f.BaseFont()
		if base == "" {
			continue
		}
		if data := fontProgram(f.V); len(data) > 0 {
			files[base] = data
		}
	}
	return files, nil
}

// fontProgram digs the embedded program stream out of a font
// dictionary, following composite fonts down to their descendant.
func fontProgram(v pdf.Value) []byte {
	desc := v.Key("FontDescriptor")
	if desc.IsNull() {
		// Composite (Type0) fonts carry the descriptor on the
		// descendant font.
		child := v.Key("DescendantFonts").Index(0)
		if child.IsNull() {
			return nil
		}
		desc = child.Key("FontDescriptor")
		if desc.IsNull() {
			return nil
		}
	}
	for _, key := range []string{"FontFile2", "FontFile3", "FontFile"} {
		stream := desc.Key(key)
		if stream.IsNull() {
			continue
		}
		data, err := readStream(stream)
		if err != nil {
			continue
		}
		return data
	}
	return nil
}

func readStream(v pdf.Value) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("stream decode failed: %v", r)
		}
	}()
	rc := v.Reader()
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GlyphRuns decodes the page's content stream into glyph runs. The
// decoded baseline is flipped into top-down space, and each run carries
// the embedded font name looked up through the page's font table so the
// identity resolver can work on it directly.
func (d *Document) GlyphRuns(page int) (runs []model.GlyphRun, err error) {
	if page < 1 || page > d.rd.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", page, d.rd.NumPage())
	}
	p := d.rd.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: %w", page, ErrInvalidDocument)
	}

	_, pageH, err := d.PageSize(page)
	if err != nil {
		return nil, err
	}

	fonts, err := d.FontTable(page)
	if err != nil {
		return nil, err
	}
	// Decoded text carries the base font name with the subset prefix
	// already stripped, not the resource name, so index the table's
	// values by their stripped form to recover the raw name.
	byBase := make(map[string]string, len(fonts))
	for _, raw := range fonts {
		byBase[stripSubset(raw)] = raw
	}

	// Content stream decoding panics on malformed operators in some
	// documents; recover and report a decode failure instead of taking
	// the process down.
	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("page %d: content decode failed: %v", page, r)
		}
	}()

	content := p.Content()
	runs = make([]model.GlyphRun, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		runs = append(runs, model.GlyphRun{
			Text:        t.S,
			X:           t.X,
			Baseline:    pageH - t.Y,
			Width:       t.W,
			Height:      t.FontSize,
			FontSize:    t.FontSize,
			FontRef:     t.Font,
			RawFontName: rawFontName(byBase, t.Font),
		})
	}
	return runs, nil
}

// rawFontName maps a decoded base font name back to the raw name from
// the page's font table, keeping the decoded name when the table has no
// match.
func rawFontName(byBase map[string]string, base string) string {
	if raw, ok := byBase[base]; ok {
		return raw
	}
	return base
}

// stripSubset drops the six-letter subset tag ("ABCDEF+") from a base
// font name.
func stripSubset(name string) string {
	if i := strings.Index(name, "+"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// inherited resolves a page attribute that may live on an ancestor
// Pages node instead of the page itself.
func inherited(p pdf.Page, key string) pdf.Value {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return pdf.Value{}
}
