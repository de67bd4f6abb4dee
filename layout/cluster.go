package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/declared-as-ala/PDF-editor/model"
)

// ClusterConfig centralizes every tolerance used when grouping glyph
// runs into regions and when refining a region back into runs.
type ClusterConfig struct {
	// LineYTolerance is the maximum baseline distance for two runs to
	// be considered part of the same line (default: 2.0 units).
	LineYTolerance float64

	// MaxRunGap is the maximum horizontal gap between a run and the
	// previous run's right edge before a split is forced even on the
	// same baseline, e.g. across columns (default: 50.0 units).
	MaxRunGap float64

	// FontSizeTolerance is the maximum font size difference for runs
	// to merge (default: 0.5 units; the comparison is strict: a
	// difference equal to the tolerance splits).
	FontSizeTolerance float64

	// SpaceGapRatio is the fraction of the preceding run's font size a
	// horizontal gap must exceed before a space is inserted when
	// joining refined runs (default: 0.2). Smaller gaps are treated as
	// kerning, not word separation.
	SpaceGapRatio float64

	// RefineYTolerance is the extra vertical slack allowed when
	// re-matching raw runs to an activated region's box (default: 10.0
	// units).
	RefineYTolerance float64

	// CoverHeightRatio is the region height as a multiple of the font
	// size, covering ascent plus a descent allowance (default: 1.2).
	CoverHeightRatio float64
}

// DefaultClusterConfig returns the default tolerances.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		LineYTolerance:    2.0,
		MaxRunGap:         50.0,
		FontSizeTolerance: 0.5,
		SpaceGapRatio:     0.2,
		RefineYTolerance:  10.0,
		CoverHeightRatio:  1.2,
	}
}

// Clusterer groups glyph runs into regions.
type Clusterer struct {
	config ClusterConfig
}

// NewClusterer creates a clusterer with default configuration.
func NewClusterer() *Clusterer {
	return &Clusterer{config: DefaultClusterConfig()}
}

// NewClustererWithConfig creates a clusterer with custom tolerances.
func NewClustererWithConfig(config ClusterConfig) *Clusterer {
	return &Clusterer{config: config}
}

// Config returns the tolerances in use.
func (c *Clusterer) Config() ClusterConfig {
	return c.config
}

// Cluster merges the page's glyph runs into an ordered list of regions.
// Runs must already carry their sampled color and resolved font
// identity; both participate in the merge predicate. The output is
// deterministic for a fixed input.
func (c *Clusterer) Cluster(runs []model.GlyphRun, page int) []model.Region {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]model.GlyphRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Baseline != sorted[j].Baseline {
			return sorted[i].Baseline < sorted[j].Baseline
		}
		return sorted[i].X < sorted[j].X
	})

	var regions []model.Region
	var cluster []model.GlyphRun

	flush := func() {
		if len(cluster) == 0 {
			return
		}
		regions = append(regions, c.emit(cluster, page, len(regions)))
		cluster = nil
	}

	for _, run := range sorted {
		if len(cluster) > 0 && !c.merges(cluster[len(cluster)-1], run) {
			flush()
		}
		cluster = append(cluster, run)
	}
	flush()

	return regions
}

// merges reports whether run may join the open cluster ending in prev.
func (c *Clusterer) merges(prev, run model.GlyphRun) bool {
	if math.Abs(run.Baseline-prev.Baseline) > c.config.LineYTolerance {
		return false
	}
	if run.Color != prev.Color {
		return false
	}
	if run.FontFamily != prev.FontFamily ||
		run.FontWeight != prev.FontWeight ||
		run.FontStyle != prev.FontStyle {
		return false
	}
	if math.Abs(run.FontSize-prev.FontSize) >= c.config.FontSizeTolerance {
		return false
	}
	if run.X-prev.Right() > c.config.MaxRunGap {
		return false
	}
	return true
}

// emit builds the region spanning a closed cluster: the horizontal
// union of its runs, topped at the first run's baseline minus its font
// size, with height proportional to that font size.
func (c *Clusterer) emit(cluster []model.GlyphRun, page, index int) model.Region {
	first := cluster[0]
	minX := first.X
	maxRight := first.Right()
	for _, run := range cluster[1:] {
		if run.X < minX {
			minX = run.X
		}
		if r := run.Right(); r > maxRight {
			maxRight = r
		}
	}

	box := model.BBox{
		X:      minX,
		Y:      first.Baseline - first.FontSize,
		Width:  maxRight - minX,
		Height: first.FontSize * c.config.CoverHeightRatio,
	}
	if box.Width < 0 {
		box.Width = 0
	}
	if box.Height < 0 {
		box.Height = 0
	}

	return model.Region{
		ID:   fmt.Sprintf("p%d-r%d", page, index),
		BBox: box,
		Page: page,
	}
}
