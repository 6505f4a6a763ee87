package feature

// ApplyWeighted scores a feature against a caller-supplied weight vector,
// giving a concrete worked `apply(reducer)` arm for query evaluation to
// test against. Grounded on the per-vertex weighted risk scoring in
// original_source/ExecutableSrc/Disclosure.cpp: each top-k key contributes
// its normalized frequency times the matching weight; scalars contribute
// value*weights["scalar"]; unknown keys contribute zero.
func ApplyWeighted(f Feature, weights map[string]float64) float64 {
	return f.Apply(func(f Feature) any {
		switch f.Kind {
		case Scalar:
			return f.Scalar * weights["scalar"]
		case Bool:
			if f.Bool {
				return weights["true"]
			}
			return 0.0
		case TopK:
			var total float64
			for i, k := range f.TopKKeys {
				total += f.TopKFreqs[i] * weights[k]
			}
			return total
		default:
			return 0.0
		}
	}).(float64)
}
