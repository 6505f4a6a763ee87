package topk

import (
	"sync"

	"github.com/dreamware/samgraph/internal/feature"
)

// Registry maintains one Sketch per key, republishing each key's top-k
// feature after every observation. Grounded on TopK::consume, which
// keeps a std::map of SlidingWindow instances and calls updateInsert
// whenever a non-empty key/frequency vector is available.
type Registry struct {
	mu       sync.RWMutex
	sketches map[string]*Sketch
	features *feature.Map
	name     string
	n, b, k  int
}

// NewRegistry constructs a Registry publishing top-k features under
// featureName, with each key's Sketch configured for an n-item window
// split into b-item blocks retaining the k most frequent keys per block.
func NewRegistry(features *feature.Map, featureName string, n, b, k int) *Registry {
	return &Registry{
		sketches: make(map[string]*Sketch),
		features: features,
		name:     featureName,
		n:        n,
		b:        b,
		k:        k,
	}
}

// Add records one observation of value under key's sketch and
// republishes the updated top-k feature, if the sketch has accumulated
// any global statistics yet.
func (r *Registry) Add(key, value string) error {
	s, err := r.sketchFor(key)
	if err != nil {
		return err
	}
	s.Add(value)

	keys := s.Keys()
	if len(keys) == 0 {
		return nil
	}
	return r.features.UpdateOrInsert(key, r.name, feature.NewTopK(keys, s.Frequencies()))
}

func (r *Registry) sketchFor(key string) (*Sketch, error) {
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
	s, err := New(r.n, r.b, r.k)
	if err != nil {
		return nil, err
	}
	r.sketches[key] = s
	return s, nil
}
