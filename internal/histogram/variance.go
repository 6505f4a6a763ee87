package histogram

// VarianceSketch estimates the running mean and variance over a sliding
// window by tracking two exponential histograms in parallel — one over
// the raw values, one over their squares — per
// original_source/SamSrc/ExponentialHistogramVariance.hpp.
type VarianceSketch struct {
	sums    *Histogram
	squares *Histogram
	n       int
	seen    int
}

// NewVarianceSketch constructs a VarianceSketch over a window of n items
// with bucket granularity k.
func NewVarianceSketch(n, k int) (*VarianceSketch, error) {
	sums, err := New(n, k)
	if err != nil {
		return nil, err
	}
	squares, err := New(n, k)
	if err != nil {
		return nil, err
	}
	return &VarianceSketch{sums: sums, squares: squares, n: n}, nil
}

// Add inserts value into the window.
func (v *VarianceSketch) Add(value float64) {
	v.sums.Add(value)
	v.squares.Add(value * value)
	if v.seen < v.n {
		v.seen++
	}
}

// Mean returns the approximate mean of the items currently in the window.
func (v *VarianceSketch) Mean() float64 {
	if v.seen == 0 {
		return 0
	}
	return v.sums.Total() / float64(v.seen)
}

// Variance returns the approximate population variance of the items
// currently in the window: E[x^2] - E[x]^2.
func (v *VarianceSketch) Variance() float64 {
	if v.seen == 0 {
		return 0
	}
	mean := v.Mean()
	meanSquare := v.squares.Total() / float64(v.seen)
	variance := meanSquare - mean*mean
	if variance < 0 {
		// Clamp floating-point drift from the approximate sketch.
		return 0
	}
	return variance
}
