package fontreg

import (
	"context"
	"strings"
	"sync"

	"github.com/declared-as-ala/PDF-editor/fontid"
)

// Registry caches resolved fonts for one open document. A Registry is
// created per document and passed explicitly to whatever needs font
// resolution; there is no process-global cache, so fonts never leak
// across documents and resolution order is testable in isolation.
type Registry struct {
	mu sync.Mutex

	// records in insertion order; similarity ties resolve to the
	// first-registered record (documented default, not a guaranteed
	// heuristic).
	records []*FontRecord

	byKey  map[Key]*FontRecord
	byName map[string]*FontRecord

	catalog       Catalog
	noSubstitutes bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithCatalog attaches a web font catalog used by the third
// resolution tier. Without one, that tier is skipped.
func WithCatalog(c Catalog) Option {
	return func(r *Registry) {
		r.catalog = c
	}
}

// WithoutSubstitutes disables the final standard-substitute tier, so
// Resolve can fail. Intended for callers that prefer to surface a
// missing font rather than silently substitute.
func WithoutSubstitutes() Option {
	return func(r *Registry) {
		r.noSubstitutes = true
	}
}

// NewRegistry creates an empty per-document registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byKey:  make(map[Key]*FontRecord),
		byName: make(map[string]*FontRecord),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores font data under the identity parsed from rawName.
// Registration is idempotent by (family, weight, style) key: a second
// registration for an existing key returns the existing record and
// never re-validates it.
func (r *Registry) Register(rawName string, data []byte, source Source) *FontRecord {
	id := fontid.Parse(rawName)

	rec := &FontRecord{
		RawName:   rawName,
		CleanName: id.CleanName,
		Family:    id.Family,
		Style:     id.Style,
		Weight:    id.Weight,
		Source:    source,
		Data:      data,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(rec)
}

// add validates and indexes a record, or returns the record already
// registered under the same key. Callers must hold r.mu.
func (r *Registry) add(rec *FontRecord) *FontRecord {
	if existing, ok := r.byKey[rec.Key()]; ok {
		// Keep serving the validated record; just index the new names
		// so future exact-match lookups hit.
		r.indexNames(rec, existing)
		return existing
	}

	if len(rec.Data) > 0 {
		if err := validate(rec.Data); err == nil {
			rec.Valid = true
		}
	} else if rec.Standard != "" {
		rec.Valid = true
	}

	r.records = append(r.records, rec)
	r.byKey[rec.Key()] = rec
	r.indexNames(rec, rec)
	return rec
}

func (r *Registry) indexNames(rec, target *FontRecord) {
	for _, name := range []string{rec.RawName, rec.CleanName} {
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := r.byName[key]; !ok {
			r.byName[key] = target
		}
	}
}

// Len returns the number of cached records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Resolve returns a usable font record for the requested raw name.
// styleHint and weightHint override the style and weight parsed from
// the name when non-zero. Tiers are attempted in order, each at most
// once; failures fall through silently. Unless the registry was built
// with WithoutSubstitutes, Resolve always succeeds: the final tier
// returns a standard substitute.
func (r *Registry) Resolve(ctx context.Context, rawName string, styleHint string, weightHint int) (*FontRecord, error) {
	id := fontid.Parse(rawName)

	style := styleHint
	if style == "" {
		style = id.Style
	}
	weight := weightHint
	if weight == 0 {
		weight = id.Weight
	}

	// Tier (a): exact match by raw name or clean name.
	r.mu.Lock()
	if rec, ok := r.byName[strings.ToLower(rawName)]; ok && rawName != "" {
		r.mu.Unlock()
		return rec, nil
	}
	if rec, ok := r.byName[strings.ToLower(id.CleanName)]; ok && id.CleanName != "" {
		r.mu.Unlock()
		return rec, nil
	}

	// Tier (b): similarity scoring across cached records.
	if rec := r.bestSimilarity(id.Family, style, weight); rec != nil {
		r.mu.Unlock()
		return rec, nil
	}
	r.mu.Unlock()

	// Tier (c): the similarity table against the web font catalog.
	if rec := r.fromCatalog(ctx, id.Family, style, weight); rec != nil {
		return rec, nil
	}

	// Tier (d): standard substitute.
	if r.noSubstitutes {
		return nil, &ResolutionError{Name: rawName}
	}
	return r.StandardSubstitute(id.Family, style, weight), nil
}

// fromCatalog tries the requested family and its catalog alternates,
// one fetch attempt each. Generic families never hit the catalog: a
// standard substitute serves them better than a lookalike download.
func (r *Registry) fromCatalog(ctx context.Context, family, style string, weight int) *FontRecord {
	if r.catalog == nil || family == "" {
		return nil
	}
	lower := strings.ToLower(family)
	if genericFamilies[lower] {
		return nil
	}

	candidates := append([]string{family}, similarAlternates[lower]...)
	for _, cand := range candidates {
		data, err := r.catalog.Fetch(ctx, cand, weight, style == "italic")
		if err != nil || len(data) == 0 {
			continue
		}
		rec := &FontRecord{
			CleanName: cand,
			Family:    cand,
			Style:     style,
			Weight:    weight,
			Source:    SourceCatalog,
			Data:      data,
		}
		r.mu.Lock()
		added := r.add(rec)
		r.mu.Unlock()
		return added
	}
	return nil
}

// StandardSubstitute returns (and caches) the worst-case built-in
// substitute for a family: serif-looking names map to Times,
// monospace-looking names to Courier, everything else to Helvetica.
// The bold variant is selected when the requested weight is 700 or
// heavier. This tier cannot fail.
func (r *Registry) StandardSubstitute(family, style string, weight int) *FontRecord {
	base := classifyFamily(family)

	w := 400
	if weight >= 700 {
		w = 700
	}
	st := "normal"
	if style == "italic" {
		st = "italic"
	}

	rec := &FontRecord{
		CleanName: base,
		Family:    base,
		Style:     st,
		Weight:    w,
		Source:    SourceStandard,
		Standard:  base,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(rec)
}
