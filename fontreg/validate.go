package fontreg

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/font"
)

// validate parses the binary as a TrueType/OpenType font. A record is
// only marked valid when the data actually loads; a corrupt download
// then falls through to cheaper tiers at embed time instead of
// producing a broken document.
func validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty font data")
	}
	if _, err := font.ParseTTF(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to parse font data: %w", err)
	}
	return nil
}

// DescribeFamily reports the family name the binary declares about
// itself, useful for confirming a catalog download matches the
// requested family.
func DescribeFamily(data []byte) (string, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse font data: %w", err)
	}
	return face.Describe().Family, nil
}
