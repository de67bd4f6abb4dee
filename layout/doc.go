// Package layout groups raw glyph runs into editable regions.
//
// Clustering is a single deterministic walk over the runs of a page,
// sorted by position: adjacent runs merge into one region while they
// sit on the same line and share color, font identity and size, and
// split on any mismatch or on a large horizontal gap (a deliberate
// spatial separation such as a column boundary). Re-running the
// clusterer over an unchanged page yields an identical region list.
//
// The coarse pass discards per-run text, so activating a region for
// editing triggers a second, finer-grained pass ([Clusterer.Refine])
// that recovers the exact constituent runs and assembles their text,
// inserting spaces only across gaps wide enough to be genuine word
// boundaries rather than kerning artifacts.
//
// Every tolerance involved is a named field of [ClusterConfig].
package layout
