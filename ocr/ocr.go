//go:build ocr

// Package ocr recovers text for regions whose content stream decoded to
// an empty string (scanned pages, Type3 glyphs without a usable
// charmap). A region's window is cropped out of the page raster and run
// through the Tesseract engine.
//
// This implementation wraps Tesseract via gosseract and requires the
// engine to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/declared-as-ala/PDF-editor/model"
)

// Client wraps Tesseract for region text recovery.
type Client struct {
	client *gosseract.Client
}

// New creates an OCR client. Close it when no longer needed to release
// engine resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG).
// The recognized text is returned with surrounding whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// RecognizeRegion crops a region's window out of a page raster and
// recognizes its text. scale is the raster's supersampling factor
// relative to page units.
func (c *Client) RecognizeRegion(img image.Image, box model.BBox, scale float64) (string, error) {
	window := image.Rect(
		int(box.X*scale),
		int(box.Y*scale),
		int((box.X+box.Width)*scale),
		int((box.Y+box.Height)*scale),
	).Intersect(img.Bounds())
	if window.Empty() {
		return "", fmt.Errorf("region window lies outside the raster")
	}

	crop := image.NewRGBA(window)
	for y := window.Min.Y; y < window.Max.Y; y++ {
		for x := window.Min.X; x < window.Max.X; x++ {
			crop.Set(x, y, img.At(x, y))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return "", fmt.Errorf("failed to encode region crop: %w", err)
	}
	return c.RecognizeImage(buf.Bytes())
}

// SetLanguage sets the recognition language(s); multiple languages can
// be combined with "+" (e.g. "eng+fra"). Default is "eng".
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets Tesseract's page segmentation mode. Single-line
// regions recognize best with gosseract.PSM_SINGLE_LINE.
func (c *Client) SetPageSegMode(mode gosseract.PageSegMode) error {
	return c.client.SetPageSegMode(mode)
}
