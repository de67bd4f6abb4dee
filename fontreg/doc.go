// Package fontreg resolves font requests to usable font data.
//
// A [Registry] is scoped to one open document and holds every font
// resolved during that session. Resolution walks a fixed fallback
// chain, each tier attempted at most once per call:
//
//  1. exact match by raw or clean name against cached records;
//  2. similarity scoring across all cached records (family match,
//     style match, weight closeness);
//  3. a fixed table of common-family alternates queried against a web
//     font catalog;
//  4. a standard substitute chosen by coarse family classification.
//
// Tier failures fall through silently and are never retried with
// backoff. The final tier always succeeds, so resolution never fails
// solely because a font is missing: a batch export with many edits is
// never blocked by one unlocatable font.
package fontreg
