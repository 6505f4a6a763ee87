package histogram

import (
	"sync"

	"github.com/dreamware/samgraph/internal/feature"
)

// SumRegistry maintains one Histogram per key, feeding the running sum of
// each key's window into a shared feature.Map under a fixed feature
// name. Grounded on ExponentialHistogramSum::consume, which keeps a
// std::map keyed by the tuple's key fields and calls updateInsert on
// every new value.
//
// Thread-safety: mu guards the window map. Per-key Add calls are not
// internally synchronized against each other — callers owning distinct
// keys never contend, and concurrent Add calls on the same key are the
// caller's responsibility to serialize (matching the single-threaded
// per-partition consume() loop this mirrors).
type SumRegistry struct {
	mu       sync.RWMutex
	windows  map[string]*Histogram
	features *feature.Map
	name     string
	n, k     int
}

// NewSumRegistry constructs a SumRegistry that writes running sums under
// featureName into features, using an n-item, k-granularity Histogram
// per key.
func NewSumRegistry(features *feature.Map, featureName string, n, k int) *SumRegistry {
	return &SumRegistry{
		windows:  make(map[string]*Histogram),
		features: features,
		name:     featureName,
		n:        n,
		k:        k,
	}
}

// Add inserts value into key's window, creating the window if this is
// its first observation, and republishes the updated running sum into
// the feature map.
func (r *SumRegistry) Add(key string, value float64) error {
	h, err := r.windowFor(key)
	if err != nil {
		return err
	}
	h.Add(value)
	return r.features.UpdateOrInsert(key, r.name, feature.NewScalar(h.Total()))
}

func (r *SumRegistry) windowFor(key string) (*Histogram, error) {
	r.mu.RLock()
	h, ok := r.windows[key]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.windows[key]; ok {
		return h, nil
	}
	h, err := New(r.n, r.k)
	if err != nil {
		return nil, err
	}
	r.windows[key] = h
	return h, nil
}

// NumKeys reports how many distinct keys currently have a window.
func (r *SumRegistry) NumKeys() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}

// VarianceRegistry is the variance analogue of SumRegistry, publishing
// both a mean and a variance feature per key, grounded on
// ExponentialHistogramVariance::consume.
type VarianceRegistry struct {
	mu        sync.RWMutex
	sketches  map[string]*VarianceSketch
	features  *feature.Map
	meanName  string
	varName   string
	n, k      int
}

// NewVarianceRegistry constructs a VarianceRegistry writing mean and
// variance features under meanName/varName.
func NewVarianceRegistry(features *feature.Map, meanName, varName string, n, k int) *VarianceRegistry {
	return &VarianceRegistry{
		sketches: make(map[string]*VarianceSketch),
		features: features,
		meanName: meanName,
		varName:  varName,
		n:        n,
		k:        k,
	}
}

// Add inserts value into key's sketch and republishes mean/variance.
func (r *VarianceRegistry) Add(key string, value float64) error {
	s, err := r.sketchFor(key)
	if err != nil {
		return err
	}
	s.Add(value)
	if err := r.features.UpdateOrInsert(key, r.meanName, feature.NewScalar(s.Mean())); err != nil {
		return err
	}
	return r.features.UpdateOrInsert(key, r.varName, feature.NewScalar(s.Variance()))
}

func (r *VarianceRegistry) sketchFor(key string) (*VarianceSketch, error) {
	r.mu.RLock()
	s, ok := r.sketches[key]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sketches[key]; ok {
		return s, nil
	}
	s, err := NewVarianceSketch(r.n, r.k)
	if err != nil {
		return nil, err
	}
	r.sketches[key] = s
	return s, nil
}
