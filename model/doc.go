// Package model provides the data types shared by the edit pipeline.
//
// The types form a progression from raw decoded content to pending edits:
//
//   - [GlyphRun] - an atomic rendered text fragment as decoded from a
//     page's content stream, annotated with its sampled ink color and
//     resolved font identity before clustering.
//   - [Region] - a clustered rectangle representing one editable block
//     of visually homogeneous text. Regions are recomputed wholly when
//     the active page changes and are never partially mutated.
//   - [TextItem] - the editable representation of an activated Region's
//     content: text plus resolved style attributes. Created lazily the
//     first time a Region is activated.
//   - [EditSession] - the set of pending edits, keyed by Region ID.
//
// Geometric primitives ([BBox], [Point]) use top-down page coordinates:
// the origin is the top-left corner of the page and Y grows downward.
// A glyph run's Baseline is therefore numerically larger than the top
// of the text it renders.
package model
