package apply

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// measureWidth returns the advance width of text when rendered with
// the given font binary at the given size (document units, 72 DPI).
func measureWidth(data []byte, text string, size float64) (float64, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return 0, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return 0, err
	}
	defer face.Close()
	return float64(font.MeasureString(face, text)) / 64, nil
}
