package feature

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dreamware/samgraph/internal/hashing"
)

// slotState is the observable lifecycle of a Map slot (§4.1): empty,
// occupied, or transiently held by whichever goroutine is installing or
// updating its value.
type slotState int32

const (
	slotEmpty slotState = iota
	slotTransient
	slotOccupied
)

type slot struct {
	mu      sync.Mutex // guards key/name/value while state == slotTransient
	state   atomic.Int32
	key     string
	name    string
	feature Feature
}

// ErrCapacity is returned by UpdateOrInsert when the table has no empty
// slot within the configured probe bound — a fatal configuration error
// per spec.md §7 (the caller is expected to treat it as fatal, the map
// itself only reports it).
var ErrCapacity = fmt.Errorf("feature: table at capacity")

// Map is the fixed-capacity, open-addressed, CAS-synchronized
// (key, feature-name) -> Feature table from spec.md §4.1. The table never
// resizes; overflow is ErrCapacity.
type Map struct {
	slots []*slot
	cap   int
}

// NewMap constructs a Map with the given fixed capacity. capacity must be
// > 0.
func NewMap(capacity int) (*Map, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("feature: capacity must be positive, got %d", capacity)
	}
	slots := make([]*slot, capacity)
	for i := range slots {
		slots[i] = &slot{}
	}
	return &Map{slots: slots, cap: capacity}, nil
}

func compositeHash(key, name string) uint64 {
	return hashing.String(key + "\x00" + name)
}

// UpdateOrInsert installs f at (key, name), merging with whatever is
// already stored there via Feature.Merge. Probes linearly from the
// composite hash; on an empty slot it installs via CAS transient->
// occupied, on a matching occupied slot it merges under the slot's
// mutex while holding the transient state, per §4.1.
func (m *Map) UpdateOrInsert(key, name string, f Feature) error {
	start := hashing.Slot(compositeHash(key, name), m.cap)
	for i := 0; i < m.cap; i++ {
		idx := (start + i) % m.cap
		s := m.slots[idx]

		if s.state.CompareAndSwap(int32(slotEmpty), int32(slotTransient)) {
			s.mu.Lock()
			s.key, s.name, s.feature = key, name, f.Clone()
			s.mu.Unlock()
			s.state.Store(int32(slotOccupied))
			return nil
		}

		// Spin until any concurrent transient resolves, then inspect.
		for s.state.Load() == int32(slotTransient) {
		}

		if s.state.Load() == int32(slotOccupied) {
			s.mu.Lock()
			matches := s.key == key && s.name == name
			if matches {
				s.state.Store(int32(slotTransient))
				merged, err := s.feature.Merge(f)
				if err != nil {
					s.state.Store(int32(slotOccupied))
					s.mu.Unlock()
					return err
				}
				s.feature = merged
				s.mu.Unlock()
				s.state.Store(int32(slotOccupied))
				return nil
			}
			s.mu.Unlock()
		}
	}
	return ErrCapacity
}

// Lookup returns the feature stored at (key, name), if any.
func (m *Map) Lookup(key, name string) (Feature, bool) {
	start := hashing.Slot(compositeHash(key, name), m.cap)
	for i := 0; i < m.cap; i++ {
		idx := (start + i) % m.cap
		s := m.slots[idx]

		for s.state.Load() == int32(slotTransient) {
		}
		state := s.state.Load()
		if state == int32(slotEmpty) {
			return Feature{}, false
		}
		s.mu.Lock()
		if s.key == key && s.name == name {
			f := s.feature.Clone()
			s.mu.Unlock()
			return f, true
		}
		s.mu.Unlock()
	}
	return Feature{}, false
}

// Exists reports whether (key, name) has a stored feature.
func (m *Map) Exists(key, name string) bool {
	_, ok := m.Lookup(key, name)
	return ok
}

// TopKLookup resolves the top-k keys published under (key, featureName),
// matching internal/query.FeatureLookup's signature structurally so it
// can be passed anywhere one is expected without this package importing
// query.
func (m *Map) TopKLookup(key, featureName string) ([]string, bool) {
	f, ok := m.Lookup(key, featureName)
	if !ok || f.Kind != TopK {
		return nil, false
	}
	return f.TopKKeys, true
}
