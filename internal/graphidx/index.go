// Package graphidx implements the temporal compressed-sparse edge index
// from spec.md §3/§4.6: a fixed-capacity, per-slot-mutex hash table of
// per-key edge lists with lazy time-window eviction. The same type backs
// both the compressed-sparse-row index (keyed by source) and the
// compressed-sparse-column index (keyed by target) — grounded on
// original_source/SamSrc/CompressedSparse.hpp, which parameterizes on
// which tuple field is the lookup key and is instantiated twice by the
// graph store, once per direction.
package graphidx

import (
	"sync"
	"sync/atomic"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/hashing"
)

// KeyFunc extracts the field an Index is keyed by — edge.Edge.Source for
// a CSR, edge.Edge.Target for a CSC.
type KeyFunc func(edge.Edge) string

// bucket holds every distinct key's edge list that hashed to one slot.
// Most slots hold exactly one list; more appear only on hash collision,
// mirroring the "list of lists" in CompressedSparse.
type bucket struct {
	mu    sync.Mutex
	lists []keyedList
}

type keyedList struct {
	key   string
	edges []edge.Edge
}

// Index is a fixed-capacity temporal edge index. currentTime tracks the
// latest start time seen across all slots; it is advanced with an atomic
// compare-and-swap loop that only ever raises it.
type Index struct {
	slots      []bucket
	keyOf      KeyFunc
	capacity   int
	windowSecs float64
	currentNs  atomic.Uint64 // bits of a float64 seconds value
}

// New constructs an Index with the given slot capacity and eviction
// window (in seconds of edge start time). keyOf selects the field edges
// are indexed by.
func New(capacity int, windowSecs float64, keyOf KeyFunc) *Index {
	return &Index{
		slots:      make([]bucket, capacity),
		keyOf:      keyOf,
		capacity:   capacity,
		windowSecs: windowSecs,
	}
}

// NewCSR constructs an Index keyed by edge source — a compressed sparse
// row index, used to answer "edges leaving this vertex" queries.
func NewCSR(capacity int, windowSecs float64) *Index {
	return New(capacity, windowSecs, func(e edge.Edge) string { return e.Source })
}

// NewCSC constructs an Index keyed by edge target — a compressed sparse
// column index, used to answer "edges arriving at this vertex" queries.
func NewCSC(capacity int, windowSecs float64) *Index {
	return New(capacity, windowSecs, func(e edge.Edge) string { return e.Target })
}

func (idx *Index) loadCurrentTime() float64 {
	return floatFromBits(idx.currentNs.Load())
}

func (idx *Index) advanceCurrentTime(t float64) {
	for {
		cur := idx.currentNs.Load()
		if floatFromBits(cur) >= t {
			return
		}
		if idx.currentNs.CompareAndSwap(cur, bitsFromFloat(t)) {
			return
		}
	}
}

// AddEdge inserts e into the index under its key (source for a CSR,
// target for a CSC). If a list already exists for the key, expired
// entries in that slot are cleaned up opportunistically, matching
// CompressedSparse::addEdge.
func (idx *Index) AddEdge(e edge.Edge) {
	idx.advanceCurrentTime(e.StartTime)

	key := idx.keyOf(e)
	slotIdx := hashing.Slot(hashing.String(key), idx.capacity)
	b := &idx.slots[slotIdx]

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.lists {
		if b.lists[i].key == key {
			b.lists[i].edges = append(b.lists[i].edges, e)
			idx.cleanupLocked(b)
			return
		}
	}
	b.lists = append(b.lists, keyedList{key: key, edges: []edge.Edge{e}})
}

// cleanupLocked drops edges from every list in b that have fallen
// outside the eviction window. Caller must hold b.mu.
func (idx *Index) cleanupLocked(b *bucket) {
	now := idx.loadCurrentTime()
	for i := range b.lists {
		edges := b.lists[i].edges
		cut := 0
		for cut < len(edges) && now-edges[cut].StartTime > idx.windowSecs {
			cut++
		}
		if cut > 0 {
			b.lists[i].edges = append([]edge.Edge(nil), edges[cut:]...)
		}
	}
}

// Query describes a lookup against an Index: the key to match exactly,
// an optional counterpart field constraint, and inclusive start/end time
// ranges. A zero-value CounterpartSet means "any".
type Query struct {
	Key             string
	Counterpart     string
	CounterpartSet  bool
	StartTimeFirst  float64
	StartTimeSecond float64
	EndTimeFirst    float64
	EndTimeSecond   float64
}

// FindEdges returns every edge in the slot for q.Key whose key field
// matches, satisfying the counterpart constraint (if set) and falling
// within both the start-time and end-time ranges — mirroring
// CompressedSparse::findEdges. Expired entries encountered along the way
// are evicted in place.
func (idx *Index) FindEdges(q Query, counterpartOf KeyFunc, windowNow float64) []edge.Edge {
	slotIdx := hashing.Slot(hashing.String(q.Key), idx.capacity)
	b := &idx.slots[slotIdx]

	b.mu.Lock()
	defer b.mu.Unlock()

	var found []edge.Edge
	for i := range b.lists {
		list := b.lists[i]
		if list.key != q.Key || len(list.edges) == 0 {
			continue
		}

		kept := list.edges[:0:0]
		for _, e := range list.edges {
			if windowNow-e.StartTime >= idx.windowSecs {
				continue // expired, drop
			}
			kept = append(kept, e)

			if q.CounterpartSet && counterpartOf(e) != q.Counterpart {
				continue
			}
			end := e.EndTime()
			if e.StartTime < q.StartTimeFirst || e.StartTime > q.StartTimeSecond ||
				end < q.EndTimeFirst || end > q.EndTimeSecond {
				continue
			}
			found = append(found, e)
		}
		b.lists[i].edges = kept
	}
	return found
}

// CountEdges returns the total number of edges currently retained across
// every slot. Linear in capacity and occupancy.
func (idx *Index) CountEdges() int {
	total := 0
	for i := range idx.slots {
		b := &idx.slots[i]
		b.mu.Lock()
		for _, l := range b.lists {
			total += len(l.edges)
		}
		b.mu.Unlock()
	}
	return total
}

// CurrentTime returns the latest edge start time observed by AddEdge.
func (idx *Index) CurrentTime() float64 {
	return idx.loadCurrentTime()
}
