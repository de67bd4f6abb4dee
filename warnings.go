package pdfeditor

import (
	"fmt"
	"strings"
)

// Warning records a non-fatal issue encountered during extraction or
// export: a page that could not be rasterized, a stale extraction that
// was discarded, a font that fell back to a substitute. Warnings never
// stop the pipeline.
type Warning struct {
	// Page is the page the issue occurred on, or 0 when not
	// page-specific.
	Page int

	// Op names the operation that produced the warning (e.g.
	// "rasterize", "extract", "export").
	Op string

	// Message is the human-readable description.
	Message string
}

// String formats the warning for display.
func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s: %s", w.Page, w.Op, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Op, w.Message)
}

// FormatWarnings joins warnings into a single newline-separated string
// for logging.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
