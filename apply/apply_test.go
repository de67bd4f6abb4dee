package apply

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/declared-as-ala/PDF-editor/fontreg"
	"github.com/declared-as-ala/PDF-editor/model"
)

type writerOp struct {
	kind   string
	page   int
	x, y   float64
	w, h   float64
	text   string
	family string
	style  string
	size   float64
	r, g, b int
}

// fakeWriter records every drawing call so tests can assert on the
// exact sequence produced by the applicator.
type fakeWriter struct {
	pages      int
	current    int
	ops        []writerOp
	embeds     map[string][]byte
	embedErr   error
	charWidth  float64
	failedOnce bool
}

func newFakeWriter(pages int) *fakeWriter {
	return &fakeWriter{pages: pages, embeds: make(map[string][]byte), charWidth: 5}
}

func (f *fakeWriter) PageCount() int { return f.pages }

func (f *fakeWriter) SelectPage(page int) error {
	f.current = page
	f.ops = append(f.ops, writerOp{kind: "page", page: page})
	return nil
}

func (f *fakeWriter) EmbedFont(family, style string, data []byte) error {
	if f.embedErr != nil && !f.failedOnce {
		f.failedOnce = true
		return f.embedErr
	}
	f.embeds[family] = data
	f.ops = append(f.ops, writerOp{kind: "embed", page: f.current, family: family, style: style})
	return nil
}

func (f *fakeWriter) SetFont(family, style string, size float64) error {
	f.ops = append(f.ops, writerOp{kind: "font", page: f.current, family: family, style: style, size: size})
	return nil
}

func (f *fakeWriter) SetTextColor(r, g, b int) {
	f.ops = append(f.ops, writerOp{kind: "textcolor", page: f.current, r: r, g: g, b: b})
}

func (f *fakeWriter) SetFillColor(r, g, b int) {
	f.ops = append(f.ops, writerOp{kind: "fillcolor", page: f.current, r: r, g: g, b: b})
}

func (f *fakeWriter) FillRect(x, y, w, h float64) {
	f.ops = append(f.ops, writerOp{kind: "rect", page: f.current, x: x, y: y, w: w, h: h})
}

func (f *fakeWriter) DrawText(x, y float64, text string) {
	f.ops = append(f.ops, writerOp{kind: "text", page: f.current, x: x, y: y, text: text})
}

func (f *fakeWriter) TextWidth(text string) float64 {
	return f.charWidth * float64(len([]rune(text)))
}

func (f *fakeWriter) Bytes() ([]byte, error) { return []byte("%PDF-fake"), nil }

func (f *fakeWriter) opsOf(kind string) []writerOp {
	var out []writerOp
	for _, op := range f.ops {
		if op.kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func makeItem() *model.TextItem {
	item := &model.TextItem{
		Text:     "Hello",
		X:        100,
		Y:        200,
		Width:    100,
		Height:   14.4,
		Page:     1,
		FontSize: 12,
		Color:    "rgb(10, 20, 30)",
	}
	item.EnsureFontDefaults()
	return item
}

func TestApplyCoverAndText(t *testing.T) {
	reg := fontreg.NewRegistry()
	w := newFakeWriter(2)
	session := model.NewEditSession()
	session.Set("p1-r0", makeItem())

	out, err := New(reg).Apply(context.Background(), w, session)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected serialized output")
	}

	rects := w.opsOf("rect")
	if len(rects) != 1 {
		t.Fatalf("expected 1 cover rect, got %d", len(rects))
	}
	r := rects[0]
	if r.page != 1 {
		t.Errorf("cover rect on page %d, want 1", r.page)
	}
	// 2-unit margin on every side.
	if r.x != 98 || r.y != 198 || r.w != 104 || math.Abs(r.h-18.4) > 1e-9 {
		t.Errorf("cover rect = (%v, %v, %v, %v), want (98, 198, 104, 18.4)", r.x, r.y, r.w, r.h)
	}

	fills := w.opsOf("fillcolor")
	if len(fills) == 0 || fills[0].r != 255 || fills[0].g != 255 || fills[0].b != 255 {
		t.Errorf("cover fill color = %+v, want white", fills)
	}

	texts := w.opsOf("text")
	if len(texts) != 1 {
		t.Fatalf("expected 1 text draw, got %d", len(texts))
	}
	if texts[0].text != "Hello" {
		t.Errorf("drew %q, want %q", texts[0].text, "Hello")
	}
	if texts[0].x != 100 || texts[0].y != 212 {
		t.Errorf("text at (%v, %v), want (100, 212)", texts[0].x, texts[0].y)
	}

	colors := w.opsOf("textcolor")
	if len(colors) != 1 || colors[0].r != 10 || colors[0].g != 20 || colors[0].b != 30 {
		t.Errorf("text color = %+v, want rgb(10, 20, 30)", colors)
	}
}

func TestApplyStandardSubstituteStyle(t *testing.T) {
	reg := fontreg.NewRegistry()
	w := newFakeWriter(1)
	item := makeItem()
	item.FontFamily = "Zebrafish"
	item.FontWeight = 700
	item.FontStyle = "italic"
	session := model.NewEditSession()
	session.Set("p1-r0", item)

	if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	fonts := w.opsOf("font")
	if len(fonts) != 1 {
		t.Fatalf("expected 1 SetFont, got %d", len(fonts))
	}
	if fonts[0].family != "Helvetica" || fonts[0].style != "BI" {
		t.Errorf("SetFont(%q, %q), want (Helvetica, BI)", fonts[0].family, fonts[0].style)
	}
	if fonts[0].size != 12 {
		t.Errorf("SetFont size = %v, want 12", fonts[0].size)
	}
}

func TestApplyEmbeddedFont(t *testing.T) {
	reg := fontreg.NewRegistry()
	reg.Register("ABCDEF+Rubik-Medium", goregular.TTF, fontreg.SourceDocument)

	w := newFakeWriter(1)
	item := makeItem()
	item.FontFamily = "Rubik"
	item.FontWeight = 500
	item.OriginalFontName = "ABCDEF+Rubik-Medium"
	session := model.NewEditSession()
	session.Set("p1-r0", item)

	if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	embeds := w.opsOf("embed")
	if len(embeds) != 1 {
		t.Fatalf("expected 1 embedded font, got %d", len(embeds))
	}
	if embeds[0].family != "Rubik-500" {
		t.Errorf("embedded family = %q, want Rubik-500", embeds[0].family)
	}
	if got := w.embeds["Rubik-500"]; len(got) != len(goregular.TTF) {
		t.Errorf("embedded %d bytes, want %d", len(got), len(goregular.TTF))
	}

	fonts := w.opsOf("font")
	if len(fonts) != 1 || fonts[0].family != "Rubik-500" || fonts[0].style != "" {
		t.Errorf("SetFont ops = %+v, want Rubik-500 with empty style", fonts)
	}
}

func TestApplyEmbedFailureFallsBackSilently(t *testing.T) {
	reg := fontreg.NewRegistry()
	reg.Register("Rubik-Medium", goregular.TTF, fontreg.SourceDocument)

	w := newFakeWriter(1)
	w.embedErr = errors.New("writer rejected font")
	item := makeItem()
	item.FontFamily = "Rubik"
	item.FontWeight = 500
	item.OriginalFontName = "Rubik-Medium"
	session := model.NewEditSession()
	session.Set("p1-r0", item)

	if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	fonts := w.opsOf("font")
	if len(fonts) != 1 {
		t.Fatalf("expected 1 SetFont, got %d", len(fonts))
	}
	if fonts[0].family != "Helvetica" {
		t.Errorf("fallback family = %q, want Helvetica", fonts[0].family)
	}
	texts := w.opsOf("text")
	if len(texts) != 1 {
		t.Fatalf("text still drawn after fallback: got %d draws", len(texts))
	}
}

func TestApplyAlignment(t *testing.T) {
	tests := []struct {
		alignment string
		wantX     float64
	}{
		{"left", 100},
		// 5 units per rune, "Hello" = 25 wide, region 100 wide.
		{"center", 137.5},
		{"right", 175},
	}
	for _, tt := range tests {
		t.Run(tt.alignment, func(t *testing.T) {
			reg := fontreg.NewRegistry()
			w := newFakeWriter(1)
			item := makeItem()
			item.Alignment = tt.alignment
			session := model.NewEditSession()
			session.Set("p1-r0", item)

			if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			texts := w.opsOf("text")
			if len(texts) != 1 {
				t.Fatalf("expected 1 text draw, got %d", len(texts))
			}
			if texts[0].x != tt.wantX {
				t.Errorf("x = %v, want %v", texts[0].x, tt.wantX)
			}
		})
	}
}

func TestApplyEmbeddedMeasurement(t *testing.T) {
	reg := fontreg.NewRegistry()
	reg.Register("Rubik-Regular", goregular.TTF, fontreg.SourceDocument)

	w := newFakeWriter(1)
	item := makeItem()
	item.FontFamily = "Rubik"
	item.OriginalFontName = "Rubik-Regular"
	item.Alignment = "center"
	session := model.NewEditSession()
	session.Set("p1-r0", item)

	if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	texts := w.opsOf("text")
	if len(texts) != 1 {
		t.Fatalf("expected 1 text draw, got %d", len(texts))
	}
	// Centered within [100, 200]; the real width of "Hello" at 12pt is
	// well under the region width, so x must land strictly inside.
	if texts[0].x <= 100 || texts[0].x >= 200 {
		t.Errorf("centered x = %v, want inside (100, 200)", texts[0].x)
	}
}

func TestApplyClearedRegionStaysCovered(t *testing.T) {
	reg := fontreg.NewRegistry()
	w := newFakeWriter(1)
	item := makeItem()
	item.Text = ""
	session := model.NewEditSession()
	session.Set("p1-r0", item)

	if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := len(w.opsOf("rect")); got != 1 {
		t.Errorf("expected 1 cover rect, got %d", got)
	}
	if got := len(w.opsOf("text")); got != 0 {
		t.Errorf("expected no text draw for a cleared region, got %d", got)
	}
}

func TestApplyDecorations(t *testing.T) {
	t.Run("underline", func(t *testing.T) {
		reg := fontreg.NewRegistry()
		w := newFakeWriter(1)
		item := makeItem()
		item.Decoration = "underline"
		session := model.NewEditSession()
		session.Set("p1-r0", item)

		if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		fonts := w.opsOf("font")
		if len(fonts) != 1 || !strings.Contains(fonts[0].style, "U") {
			t.Errorf("SetFont ops = %+v, want style containing U", fonts)
		}
	})

	t.Run("line-through", func(t *testing.T) {
		reg := fontreg.NewRegistry()
		w := newFakeWriter(1)
		item := makeItem()
		item.Decoration = "line-through"
		session := model.NewEditSession()
		session.Set("p1-r0", item)

		if _, err := New(reg).Apply(context.Background(), w, session); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		rects := w.opsOf("rect")
		if len(rects) != 2 {
			t.Fatalf("expected cover rect plus strike rect, got %d", len(rects))
		}
		strike := rects[1]
		baseline := 212.0
		if strike.y >= baseline || strike.y <= item.Y {
			t.Errorf("strike rect y = %v, want between region top %v and baseline %v", strike.y, item.Y, baseline)
		}
		fills := w.opsOf("fillcolor")
		last := fills[len(fills)-1]
		if last.r != 10 || last.g != 20 || last.b != 30 {
			t.Errorf("strike fill color = %+v, want text color", last)
		}
	})
}

func TestApplyPageOutOfRange(t *testing.T) {
	reg := fontreg.NewRegistry()
	w := newFakeWriter(1)
	item := makeItem()
	item.Page = 3
	session := model.NewEditSession()
	session.Set("p3-r0", item)

	if _, err := New(reg).Apply(context.Background(), w, session); err == nil {
		t.Fatal("expected error for out-of-range page")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"rgb(10, 20, 30)", 10, 20, 30},
		{"rgb(10,20,30)", 10, 20, 30},
		{"rgb(255, 255, 255)", 255, 255, 255},
		{"rgb(300, 0, 0)", 0, 0, 0},
		{"#ff0000", 0, 0, 0},
		{"", 0, 0, 0},
	}
	for _, tt := range tests {
		r, g, b := parseColor(tt.in)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseColor(%q) = (%d, %d, %d), want (%d, %d, %d)", tt.in, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestMeasureWidth(t *testing.T) {
	short, err := measureWidth(goregular.TTF, "Hi", 12)
	if err != nil {
		t.Fatalf("measureWidth returned error: %v", err)
	}
	long, err := measureWidth(goregular.TTF, "Hi there everyone", 12)
	if err != nil {
		t.Fatalf("measureWidth returned error: %v", err)
	}
	if short <= 0 {
		t.Errorf("width = %v, want > 0", short)
	}
	if long <= short {
		t.Errorf("longer text measured %v, shorter %v; want monotonic growth", long, short)
	}

	if _, err := measureWidth([]byte("not a font"), "Hi", 12); err == nil {
		t.Error("expected error for invalid font data")
	}
}
