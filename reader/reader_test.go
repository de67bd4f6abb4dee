package reader

import (
	"bytes"
	"errors"
	"testing"

	"codeberg.org/go-pdf/fpdf"
)

func TestFromBytesRejectsEmptyInput(t *testing.T) {
	if _, err := FromBytes(nil); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("FromBytes(nil) error = %v, want ErrInvalidDocument", err)
	}
	if _, err := FromBytes([]byte{}); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("FromBytes(empty) error = %v, want ErrInvalidDocument", err)
	}
}

func TestFromBytesRejectsNonPDF(t *testing.T) {
	inputs := [][]byte{
		[]byte("hello world"),
		[]byte("<html><body>not a document</body></html>"),
		[]byte("%PD"),
		[]byte("PK\x03\x04zipfile"),
	}
	for _, in := range inputs {
		if _, err := FromBytes(in); !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("FromBytes(%q...) error = %v, want ErrInvalidDocument", truncate(in), err)
		}
	}
}

func TestFromBytesRejectsTruncatedPDF(t *testing.T) {
	// Valid header but no cross-reference table.
	if _, err := FromBytes([]byte("%PDF-1.7\n1 0 obj\n<< >>\nendobj\n")); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("truncated document error = %v, want ErrInvalidDocument", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open("testdata/does-not-exist.pdf"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGlyphRunsCarryRawFontName(t *testing.T) {
	doc, err := FromBytes(makeFixturePDF(t))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	fonts, err := doc.FontTable(1)
	if err != nil {
		t.Fatalf("FontTable: %v", err)
	}
	if len(fonts) == 0 {
		t.Fatal("font table is empty")
	}
	rawNames := make(map[string]bool, len(fonts))
	for _, raw := range fonts {
		rawNames[raw] = true
	}

	runs, err := doc.GlyphRuns(1)
	if err != nil {
		t.Fatalf("GlyphRuns: %v", err)
	}
	if len(runs) == 0 {
		t.Fatal("no glyph runs decoded")
	}
	for _, run := range runs {
		if run.RawFontName == "" {
			t.Fatalf("run %q has empty RawFontName", run.Text)
		}
		if !rawNames[run.RawFontName] {
			t.Errorf("run %q RawFontName = %q, not present in font table %v", run.Text, run.RawFontName, fonts)
		}
	}
}

func TestRawFontNameRestoresSubsetPrefix(t *testing.T) {
	byBase := map[string]string{
		"Rubik-Medium": "ABCDEF+Rubik-Medium",
		"Helvetica":    "Helvetica",
	}
	if got := rawFontName(byBase, "Rubik-Medium"); got != "ABCDEF+Rubik-Medium" {
		t.Errorf("subsetted lookup = %q, want ABCDEF+Rubik-Medium", got)
	}
	if got := rawFontName(byBase, "Helvetica"); got != "Helvetica" {
		t.Errorf("plain lookup = %q, want Helvetica", got)
	}
	if got := rawFontName(byBase, "Unknown"); got != "Unknown" {
		t.Errorf("missing lookup = %q, want the decoded name back", got)
	}
}

func TestStripSubset(t *testing.T) {
	if got := stripSubset("ABCDEF+Inter-Regular"); got != "Inter-Regular" {
		t.Errorf("stripSubset = %q, want Inter-Regular", got)
	}
	if got := stripSubset("Courier"); got != "Courier" {
		t.Errorf("stripSubset = %q, want Courier", got)
	}
}

func makeFixturePDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: 612, Ht: 792})
	pdf.SetFont("Times", "B", 14)
	pdf.Text(72, 100, "Quarterly Report")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("failed to build fixture document: %v", err)
	}
	return buf.Bytes()
}

func truncate(b []byte) string {
	if len(b) > 8 {
		b = b[:8]
	}
	return string(b)
}
