// Package sampler infers the dominant ink color of a glyph run by
// sampling a rendered page raster.
//
// Anti-aliased edges of black text produce many near-gray pixels that
// would dilute a naive average, so the sampler votes for the mode of
// the darkest pixel bucket first, then for saturated colors, and only
// then for everything else visible. See [Config] for the thresholds.
package sampler

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/declared-as-ala/PDF-editor/model"
)

// PageRasterizer renders a page to an image at a given supersampling
// scale. It is provided by an external document-rendering library;
// this module only consumes the interface.
type PageRasterizer interface {
	// Rasterize renders the given page (1-based) scaled by scale.
	Rasterize(ctx context.Context, page int, scale float64) (image.Image, error)
}

// Config holds the sampling thresholds. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	// SuperSample is the raster scale factor used when computing pixel
	// windows from page-space geometry (default: 2.0).
	SuperSample float64

	// WhiteThreshold: pixels with all channels above this value are
	// treated as background and discarded (default: 250).
	WhiteThreshold uint8

	// AlphaThreshold: pixels with alpha below this value are treated as
	// anti-aliasing noise and discarded (default: 200).
	AlphaThreshold uint8

	// DarkMax: pixels whose maximum channel is below this value belong
	// to the "dark" bucket (default: 100).
	DarkMax uint8

	// SaturationRatio: pixels with (max-min)/max above this value belong
	// to the "saturated" bucket (default: 0.4).
	SaturationRatio float64
}

// DefaultConfig returns the default sampling thresholds.
func DefaultConfig() Config {
	return Config{
		SuperSample:     2.0,
		WhiteThreshold:  250,
		AlphaThreshold:  200,
		DarkMax:         100,
		SaturationRatio: 0.4,
	}
}

// WindowForRun computes the pixel-space sample window for a glyph run
// at the given raster scale. The window is shifted up by one font size
// to cover the ascent, with height covering 1.2x the font size.
func WindowForRun(run model.GlyphRun, scale float64) image.Rectangle {
	x0 := run.X * scale
	y0 := (run.Baseline - run.FontSize) * scale
	x1 := (run.X + run.Width) * scale
	y1 := (run.Baseline - run.FontSize + run.FontSize*1.2) * scale
	return image.Rect(int(x0), int(y0), int(x1+0.5), int(y1+0.5))
}

// bucket accumulates a plurality vote over quantized colors, breaking
// ties by first-seen insertion order.
type bucket struct {
	counts map[[3]uint8]int
	order  [][3]uint8
}

func (b *bucket) add(c [3]uint8) {
	if b.counts == nil {
		b.counts = make(map[[3]uint8]int)
	}
	if _, seen := b.counts[c]; !seen {
		b.order = append(b.order, c)
	}
	b.counts[c]++
}

func (b *bucket) mode() ([3]uint8, bool) {
	best := 0
	var bc [3]uint8
	ok := false
	for _, c := range b.order {
		if b.counts[c] > best {
			best = b.counts[c]
			bc = c
			ok = true
		}
	}
	return bc, ok
}

// Sample reads the pixel window and returns the dominant ink color as
// a CSS rgb() string. Windows outside the raster are clamped to it;
// a window that is empty after filtering yields black.
func Sample(img image.Image, window image.Rectangle) string {
	return SampleWithConfig(img, window, DefaultConfig())
}

// SampleWithConfig is Sample with explicit thresholds.
func SampleWithConfig(img image.Image, window image.Rectangle, cfg Config) string {
	if img == nil {
		return model.DefaultColor
	}

	window = window.Intersect(img.Bounds())
	if window.Empty() {
		return model.DefaultColor
	}

	var dark, saturated, other bucket

	for y := window.Min.Y; y < window.Max.Y; y++ {
		for x := window.Min.X; x < window.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)

			if px.A < cfg.AlphaThreshold {
				continue
			}
			if px.R > cfg.WhiteThreshold && px.G > cfg.WhiteThreshold && px.B > cfg.WhiteThreshold {
				continue
			}

			c := [3]uint8{px.R, px.G, px.B}
			maxC, minC := maxMin(px.R, px.G, px.B)

			switch {
			case maxC < cfg.DarkMax:
				dark.add(c)
			case maxC > 0 && float64(maxC-minC)/float64(maxC) > cfg.SaturationRatio:
				saturated.add(c)
			default:
				other.add(c)
			}
		}
	}

	// First non-empty bucket wins, in priority order.
	for _, b := range []*bucket{&dark, &saturated, &other} {
		if c, ok := b.mode(); ok {
			return ColorString(c[0], c[1], c[2])
		}
	}
	return model.DefaultColor
}

// ColorString formats an RGB triple as a CSS rgb() string.
func ColorString(r, g, b uint8) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

func maxMin(r, g, b uint8) (uint8, uint8) {
	maxC, minC := r, r
	if g > maxC {
		maxC = g
	}
	if b > maxC {
		maxC = b
	}
	if g < minC {
		minC = g
	}
	if b < minC {
		minC = b
	}
	return maxC, minC
}
