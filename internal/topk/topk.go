// Package topk implements the sliding-window top-k frequency sketch from
// spec.md §3/§4.2. Grounded on original_source/SamSrc/sam/SlidingWindow.hpp,
// ActiveWindow.hpp and DormantWindow.hpp: an active block of b raw key
// counts, a queue of dormant blocks that retain only their own top-k
// counts, and a global running total maintained incrementally as blocks
// roll off.
package topk

import (
	"fmt"
	"sort"
)

// keyCount pairs a key with an observation count, used both for the
// active block's full tally and a dormant block's retained top-k.
type keyCount struct {
	key   string
	count int64
}

// activeBlock tallies every key seen until it reaches its configured
// size, mirroring ActiveWindow<K>.
type activeBlock struct {
	counts map[string]int64
	size   int
	limit  int
}

func newActiveBlock(limit int) *activeBlock {
	return &activeBlock{counts: make(map[string]int64), limit: limit}
}

// add increments key's count. Returns false once the block is full — the
// caller must roll it into a dormant block and start a fresh one.
func (a *activeBlock) add(key string) bool {
	if a.size >= a.limit {
		return false
	}
	a.counts[key]++
	a.size++
	return true
}

// topK returns the k most frequent keys in the block, descending.
func (a *activeBlock) topK(k int) []keyCount {
	pairs := make([]keyCount, 0, len(a.counts))
	for k, v := range a.counts {
		pairs = append(pairs, keyCount{key: k, count: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].key < pairs[j].key
	})
	if len(pairs) > k {
		pairs = pairs[:k]
	}
	return pairs
}

// Sketch is a fixed-capacity sliding-window top-k estimator over a
// stream of keys for a single entity (vertex, edge type, whatever the
// caller keys its windows by).
type Sketch struct {
	globalInfo map[string]int64
	dormant    []keyCount // flattened per-block retained top-k, in arrival order, delimited by dormantLen
	dormantLen []int      // number of keyCount entries contributed by each dormant block, oldest first
	active     *activeBlock
	blockSize  int
	k          int
	numDormant int
}

// New constructs a Sketch over a window of n items, partitioned into
// blocks of b items each, retaining the k most frequent keys per block.
// N/b must exceed 1 so there is room for at least one dormant block.
func New(n, b, k int) (*Sketch, error) {
	if b <= 0 {
		return nil, fmt.Errorf("topk: block size must be positive, got %d", b)
	}
	numDormant := n/b - 1
	if numDormant <= 0 {
		return nil, fmt.Errorf("topk: num dormant windows was <= 0 (N=%d, b=%d)", n, b)
	}
	return &Sketch{
		globalInfo: make(map[string]int64),
		active:     newActiveBlock(b),
		blockSize:  b,
		k:          k,
		numDormant: numDormant,
	}, nil
}

// Add records one observation of key.
func (s *Sketch) Add(key string) {
	if !s.active.add(key) {
		s.rollActiveToDormant()
		s.active = newActiveBlock(s.blockSize)
		s.active.add(key)
	}

	if len(s.dormantLen) > s.numDormant {
		s.evictOldestDormant()
	}
}

func (s *Sketch) rollActiveToDormant() {
	top := s.active.topK(s.k)
	for _, kc := range top {
		s.globalInfo[kc.key] += kc.count
	}
	s.dormant = append(s.dormant, top...)
	s.dormantLen = append(s.dormantLen, len(top))
}

func (s *Sketch) evictOldestDormant() {
	n := s.dormantLen[0]
	oldest := s.dormant[:n]
	for _, kc := range oldest {
		s.globalInfo[kc.key] -= kc.count
		if s.globalInfo[kc.key] <= 0 {
			delete(s.globalInfo, kc.key)
		}
	}
	s.dormant = s.dormant[n:]
	s.dormantLen = s.dormantLen[1:]
}

// NumDormant returns the number of dormant blocks configured for this
// sketch's window.
func (s *Sketch) NumDormant() int {
	return s.numDormant
}

// NumDormantElements returns b times the number of dormant blocks
// currently retained, the denominator DormantWindow-style frequency
// normalization divides by.
func (s *Sketch) NumDormantElements() int {
	return len(s.dormantLen) * s.blockSize
}

// Keys returns the globally tracked keys in descending frequency order.
func (s *Sketch) Keys() []string {
	pairs := s.sortedGlobal()
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.key
	}
	return keys
}

// Frequencies returns the normalized frequency (count / total dormant
// elements) for each key returned by Keys, in the same order.
func (s *Sketch) Frequencies() []float64 {
	pairs := s.sortedGlobal()
	total := float64(s.NumDormantElements())
	freqs := make([]float64, len(pairs))
	for i, p := range pairs {
		if total > 0 {
			freqs[i] = float64(p.count) / total
		}
	}
	return freqs
}

func (s *Sketch) sortedGlobal() []keyCount {
	pairs := make([]keyCount, 0, len(s.globalInfo))
	for k, v := range s.globalInfo {
		pairs = append(pairs, keyCount{key: k, count: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].key < pairs[j].key
	})
	return pairs
}
