// Package histogram implements Datar's exponential histogram for an
// approximate sliding-window sum over a stream of float64 values, per
// spec.md §3/§4 "sliding-window sum/variance sketch". Grounded on
// original_source/SamSrc/ExponentialHistogram.hpp: a geometric hierarchy
// of levels, level i holding values that each represent 2^i original
// items, with the oldest pair at a level merged into the next level once
// that level fills.
package histogram

import "fmt"

// level is one tier of the histogram: a fixed-size circular buffer of
// partial sums, each slot representing 2^index original items.
type level struct {
	data          []float64
	end           int
	seenFullCycle bool
	needMerge     bool
}

// Histogram is a fixed-capacity approximate sliding-window sum. It never
// allocates after construction; Add is O(numLevels) amortized.
type Histogram struct {
	levels []level
	k      int
	n      int
	total  float64
}

// New constructs a Histogram over a window of n items, with k controlling
// bucket granularity: a level holds k+2 slots at level 0, k/2+2 at every
// level above. n and k must be positive.
func New(n, k int) (*Histogram, error) {
	if n <= 0 {
		return nil, fmt.Errorf("histogram: window size must be positive, got %d", n)
	}
	if k <= 0 {
		return nil, fmt.Errorf("histogram: k must be positive, got %d", k)
	}

	numLevels := 1
	total := k + 2
	size := 1
	for total <= n {
		size *= 2
		total += (k/2 + 2) * size
		numLevels++
	}

	levels := make([]level, numLevels)
	levels[0].data = make([]float64, k+2)
	for i := 1; i < numLevels; i++ {
		levels[i].data = make([]float64, k/2+2)
	}

	return &Histogram{levels: levels, k: k, n: n}, nil
}

// Add inserts item into the window, evicting the oldest value once the
// window is full.
func (h *Histogram) Add(item float64) {
	h.total += item
	h.addAt(item, 0)
}

// Total returns the approximate sum of all items currently in the window.
func (h *Histogram) Total() float64 {
	return h.total
}

// NumLevels returns the number of geometric levels in use.
func (h *Histogram) NumLevels() int {
	return len(h.levels)
}

// NumSlots returns the total number of value slots across all levels —
// the representational capacity of the sketch.
func (h *Histogram) NumSlots() int {
	size := 1
	total := h.k + 2
	for i := 1; i < len(h.levels); i++ {
		size *= 2
		total += (h.k/2 + 2) * size
	}
	return total
}

func (h *Histogram) addAt(item float64, idx int) {
	if idx >= len(h.levels) {
		h.total -= item
		return
	}
	lv := &h.levels[idx]
	capacity := len(lv.data)

	if !lv.seenFullCycle {
		lv.data[lv.end] = item
		h.incrementEnd(lv, capacity)
		if lv.end == 0 {
			lv.seenFullCycle = true
			lv.needMerge = true
		}
		return
	}

	if lv.needMerge {
		first := lv.data[lv.end]
		second := lv.data[h.endPlusOne(lv, capacity)]
		h.addAt(first+second, idx+1)
		lv.data[lv.end] = item
		lv.needMerge = false
		h.incrementEnd(lv, capacity)
		return
	}

	lv.data[lv.end] = item
	h.incrementEnd(lv, capacity)
	lv.needMerge = true
}

func (h *Histogram) endPlusOne(lv *level, capacity int) int {
	next := lv.end + 1
	if next >= capacity-1 {
		return 0
	}
	return next
}

func (h *Histogram) incrementEnd(lv *level, capacity int) {
	lv.end++
	if lv.end >= capacity {
		lv.end = 0
	}
}
