// Package feature implements the tagged-variant Feature hierarchy and the
// concurrent feature map described in spec.md §3/§4.1. Per DESIGN.md notes
// (grounded on the source's polymorphic Features.hpp), dispatch is on the
// variant tag rather than a class hierarchy: each kind implements Apply,
// Merge, and Clone directly on the Feature value.
package feature

import "fmt"

// Kind tags the payload a Feature carries.
type Kind int

const (
	// Scalar carries a single float64.
	Scalar Kind = iota
	// Bool carries a single boolean.
	Bool
	// TopK carries parallel key/frequency vectors, already normalized.
	TopK
	// VertexMap carries a map from vertex id to nested Feature.
	VertexMap
)

// Feature is a copy-on-update value: every update_or_insert replaces the
// stored value atomically from readers' perspective (no in-place mutation
// of a shared Feature is ever performed by this package).
type Feature struct {
	VertexMap map[string]Feature
	TopKKeys  []string
	TopKFreqs []float64
	Scalar    float64
	Bool      bool
	Kind      Kind
}

// NewScalar builds a scalar feature.
func NewScalar(v float64) Feature { return Feature{Kind: Scalar, Scalar: v} }

// NewBool builds a boolean feature.
func NewBool(v bool) Feature { return Feature{Kind: Bool, Bool: v} }

// NewTopK builds a top-k feature from parallel keys/frequencies. The
// caller must supply them already sorted by descending frequency, as
// produced by topk.Sketch.Frequencies.
func NewTopK(keys []string, freqs []float64) Feature {
	return Feature{Kind: TopK, TopKKeys: keys, TopKFreqs: freqs}
}

// NewVertexMap builds a map-of-features feature.
func NewVertexMap(m map[string]Feature) Feature { return Feature{Kind: VertexMap, VertexMap: m} }

// Apply evaluates reducer against f's payload. This is the single-
// operation contract spec.md §3 requires of every feature variant.
func (f Feature) Apply(reducer func(Feature) any) any {
	return reducer(f)
}

// Merge combines an incoming update into the feature already stored at a
// (key, name) slot, per the kind-specific semantics in §4.1: scalars and
// booleans replace, maps union by key, top-k replaces wholesale.
func (f Feature) Merge(incoming Feature) (Feature, error) {
	if f.Kind != incoming.Kind {
		return Feature{}, fmt.Errorf("feature: cannot merge kind %d into %d", incoming.Kind, f.Kind)
	}
	switch incoming.Kind {
	case Scalar, Bool, TopK:
		return incoming.Clone(), nil
	case VertexMap:
		merged := make(map[string]Feature, len(f.VertexMap)+len(incoming.VertexMap))
		for k, v := range f.VertexMap {
			merged[k] = v
		}
		for k, v := range incoming.VertexMap {
			merged[k] = v
		}
		return Feature{Kind: VertexMap, VertexMap: merged}, nil
	default:
		return Feature{}, fmt.Errorf("feature: unknown kind %d", incoming.Kind)
	}
}

// Clone returns a deep copy so a caller can hold a Feature beyond the
// lifetime of the slot it was read from.
func (f Feature) Clone() Feature {
	out := f
	if f.TopKKeys != nil {
		out.TopKKeys = append([]string(nil), f.TopKKeys...)
		out.TopKFreqs = append([]float64(nil), f.TopKFreqs...)
	}
	if f.VertexMap != nil {
		out.VertexMap = make(map[string]Feature, len(f.VertexMap))
		for k, v := range f.VertexMap {
			out.VertexMap[k] = v.Clone()
		}
	}
	return out
}

// InTopK reports whether key appears among f's top-k keys. Used directly
// by the query engine's vertex-constraint evaluator (§3 "variable ∈
// top-k-feature").
func (f Feature) InTopK(key string) bool {
	if f.Kind != TopK {
		return false
	}
	for _, k := range f.TopKKeys {
		if k == key {
			return true
		}
	}
	return false
}
