package layout

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/declared-as-ala/PDF-editor/model"
)

// RefinedRegion is the result of re-matching raw glyph runs to an
// activated region: the exact constituent runs in reading order, and
// their assembled text.
type RefinedRegion struct {
	Runs []model.GlyphRun
	Text string
}

// Refine re-scans all raw runs of a page and recovers the exact runs
// belonging to the given region. The coarse clustering pass discards
// per-run text, so this second pass exists to rebuild the content
// needed for in-place editing. Adjacent runs are joined with a single
// space only when the horizontal gap exceeds SpaceGapRatio of the
// preceding run's font size; the assembled text is NFC-normalized.
func (c *Clusterer) Refine(runs []model.GlyphRun, region model.Region) RefinedRegion {
	top := region.BBox.Top() - c.config.RefineYTolerance
	bottom := region.BBox.Bottom() + c.config.RefineYTolerance

	var matched []model.GlyphRun
	for _, run := range runs {
		if !run.Box().OverlapsHorizontally(region.BBox) {
			continue
		}
		if run.Baseline < top || run.Baseline > bottom {
			continue
		}
		matched = append(matched, run)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Baseline != matched[j].Baseline {
			return matched[i].Baseline < matched[j].Baseline
		}
		return matched[i].X < matched[j].X
	})

	var sb strings.Builder
	for i, run := range matched {
		if i > 0 {
			prev := matched[i-1]
			if run.X-prev.Right() > c.config.SpaceGapRatio*prev.FontSize {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(run.Text)
	}

	return RefinedRegion{
		Runs: matched,
		Text: norm.NFC.String(sb.String()),
	}
}
