//go:build !ocr

// Package ocr recovers text for regions whose content stream decoded to
// an empty string (scanned pages, Type3 glyphs without a usable
// charmap).
//
// This is the stub used when the "ocr" build tag is not set: every
// operation returns ErrOCRNotEnabled and regions with undecodable text
// simply activate empty. To enable recovery, install Tesseract and
// rebuild with:
//
//	go build -tags ocr
package ocr

import (
	"errors"
	"image"

	"github.com/declared-as-ala/PDF-editor/model"
)

// ErrOCRNotEnabled is returned when OCR is requested but support was
// not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is a stub that returns ErrOCRNotEnabled for all operations.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op, safe on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// RecognizeRegion returns ErrOCRNotEnabled.
func (c *Client) RecognizeRegion(img image.Image, box model.BBox, scale float64) (string, error) {
	return "", ErrOCRNotEnabled
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}
