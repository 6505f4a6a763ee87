package match

import (
	"sync"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/graphidx"
	"github.com/dreamware/samgraph/internal/hashing"
	"github.com/dreamware/samgraph/internal/query"
)

// resultBucket holds every in-flight PartialMatch whose next required
// edge hashes to this slot, guarded by its own mutex so advancing
// matches in one bucket never blocks another — grounded on
// SubgraphQueryResultMap's per-bucket locking scheme.
type resultBucket struct {
	mu      sync.Mutex
	matches []*PartialMatch
}

// ResultMap is the sharded table of partial matches for a single
// registered query: new candidate edges are hashed by the vertex the
// waiting matches need next and checked only against that bucket's
// list, instead of scanning every in-flight match. Completed matches are
// delivered to a bounded ring buffer for the caller to drain.
type ResultMap struct {
	query  *query.Query
	lookup query.FeatureLookup
	slots  []resultBucket

	// csr and csc are references into the graph store's own indices,
	// per §9's free-standing-CSR/CSC design — the result map never
	// owns or mutates them, only reads via FindEdges to drive §4.3's
	// process-against-graph loop. Either may be nil (e.g. in tests that
	// exercise only the streamed-edge path), in which case the loop
	// simply finds no graph-resident candidates.
	csr, csc *graphidx.Index

	onWaiting func(*PartialMatch)

	ringMu sync.Mutex
	ring   [][]edge.Edge
	ringAt int
	ringN  int
}

// NewResultMap constructs a ResultMap for q with the given number of
// hash slots and completed-match ring buffer capacity. csr and csc are
// the graph store's own temporal indices, consulted (not owned) to
// advance a partial match against edges already indexed locally.
func NewResultMap(q *query.Query, lookup query.FeatureLookup, csr, csc *graphidx.Index, slots, ringCapacity int) *ResultMap {
	if slots <= 0 {
		slots = 1
	}
	if ringCapacity <= 0 {
		ringCapacity = 1
	}
	return &ResultMap{
		query:  q,
		lookup: lookup,
		csr:    csr,
		csc:    csc,
		slots:  make([]resultBucket, slots),
		ring:   make([][]edge.Edge, ringCapacity),
	}
}

func (rm *ResultMap) slotFor(vertex string) int {
	return hashing.Slot(hashing.String(vertex), len(rm.slots))
}

// SetOnWaiting installs a callback invoked with every match left waiting
// for its next edge description after Process advances or seeds it — the
// graph store uses this hook to check NextRequest and forward any edge
// request to the vertex's owning node.
func (rm *ResultMap) SetOnWaiting(hook func(*PartialMatch)) {
	rm.onWaiting = hook
}

func (rm *ResultMap) notifyWaiting(m *PartialMatch) {
	if rm.onWaiting != nil {
		rm.onWaiting(m)
	}
}

// Process advances every in-flight match that could use e as its next
// edge, seeds a brand-new match if e satisfies the query's first edge
// description, and returns any matches e completed. currentTime expires
// stale matches encountered along the way. Every match newly advanced
// this way is then driven against the local CSR/CSC as far as it will
// go before being filed or reported complete, per §4.3's iterative
// process-against-graph loop.
func (rm *ResultMap) Process(e edge.Edge, currentTime float64) []*PartialMatch {
	var completed []*PartialMatch

	completed = append(completed, rm.processSlot(rm.slotFor(e.Source), e, currentTime)...)
	if e.Source != e.Target {
		completed = append(completed, rm.processSlot(rm.slotFor(e.Target), e, currentTime)...)
	}

	if seed, err := New(rm.query, rm.lookup, e); err == nil {
		c, waiting := rm.driveGraph(seed, currentTime)
		completed = append(completed, c...)
		for _, m := range waiting {
			rm.file(m)
		}
	}

	for _, c := range completed {
		rm.publish(c.ResultEdges())
	}
	return completed
}

func (rm *ResultMap) processSlot(idx int, e edge.Edge, currentTime float64) []*PartialMatch {
	b := &rm.slots[idx]
	b.mu.Lock()
	var advancing []*PartialMatch
	kept := b.matches[:0:0]
	for _, m := range b.matches {
		if m.IsExpired(currentTime) {
			continue
		}
		next, ok, err := m.AddEdge(e)
		if err != nil {
			continue
		}
		if !ok {
			kept = append(kept, m)
			continue
		}
		advancing = append(advancing, next)
	}
	b.matches = kept
	b.mu.Unlock()

	var completed []*PartialMatch
	for _, next := range advancing {
		c, waiting := rm.driveGraph(next, currentTime)
		completed = append(completed, c...)
		for _, m := range waiting {
			rm.file(m)
		}
	}
	return completed
}

// driveGraph advances m as far as the local CSR/CSC alone will take it:
// each time a graph-resident edge satisfies m's next description, it
// recurses on the resulting match, since that edge may itself have been
// sitting there long enough for the description after it to also be
// satisfiable locally. It returns every match completed along the way
// and the frontier of matches still waiting on a future edge — m itself
// always among them unless it completed or expired, since a graph scan finding no
// candidate today doesn't rule one out arriving later.
func (rm *ResultMap) driveGraph(m *PartialMatch, currentTime float64) (completed, waiting []*PartialMatch) {
	if m.Complete() {
		return []*PartialMatch{m}, nil
	}
	if m.IsExpired(currentTime) {
		return nil, nil
	}
	waiting = append(waiting, m)

	for _, cand := range rm.graphCandidates(m, currentTime) {
		next, ok, err := m.AddEdge(cand)
		if err != nil || !ok {
			continue
		}
		c, w := rm.driveGraph(next, currentTime)
		completed = append(completed, c...)
		waiting = append(waiting, w...)
	}
	return completed, waiting
}

// graphCandidates scans the CSR starting from m's bound source and the
// CSC from its bound target for edges in the next description's time
// ranges, mirroring spec.md §4.3's "scanning CSR ... and CSC ...". The
// same edge can appear in both scans when both endpoints are already
// bound; it is returned once.
func (rm *ResultMap) graphCandidates(m *PartialMatch, currentTime float64) []edge.Edge {
	csrQuery, hasCSR, cscQuery, hasCSC := m.NextGraphQueries()
	if !hasCSR && !hasCSC {
		return nil
	}

	seen := make(map[edge.Fingerprint]bool)
	var out []edge.Edge
	add := func(edges []edge.Edge) {
		for _, e := range edges {
			fp := e.Fingerprint()
			if seen[fp] {
				continue
			}
			seen[fp] = true
			out = append(out, e)
		}
	}

	if hasCSR && rm.csr != nil {
		add(rm.csr.FindEdges(csrQuery, func(e edge.Edge) string { return e.Target }, currentTime))
	}
	if hasCSC && rm.csc != nil {
		add(rm.csc.FindEdges(cscQuery, func(e edge.Edge) string { return e.Source }, currentTime))
	}
	return out
}

// file inserts m into the bucket keyed by its next description's bound
// source, or its bound target when only the target is bound. A match
// whose next description has neither endpoint bound is not filed.
func (rm *ResultMap) file(m *PartialMatch) {
	if src, ok := m.CurrentSource(); ok {
		rm.fileAt(rm.slotFor(src), m)
		return
	}
	if trg, ok := m.CurrentTarget(); ok {
		rm.fileAt(rm.slotFor(trg), m)
		return
	}
}

func (rm *ResultMap) fileAt(idx int, m *PartialMatch) {
	b := &rm.slots[idx]
	b.mu.Lock()
	b.matches = append(b.matches, m)
	b.mu.Unlock()
	rm.notifyWaiting(m)
}

// publish appends a completed match's edges to the ring buffer, dropping
// the oldest entry once the buffer is full.
func (rm *ResultMap) publish(edges []edge.Edge) {
	rm.ringMu.Lock()
	defer rm.ringMu.Unlock()
	rm.ring[rm.ringAt] = edges
	rm.ringAt = (rm.ringAt + 1) % len(rm.ring)
	if rm.ringN < len(rm.ring) {
		rm.ringN++
	}
}

// Drain returns every completed match currently buffered, oldest first,
// and empties the buffer.
func (rm *ResultMap) Drain() [][]edge.Edge {
	rm.ringMu.Lock()
	defer rm.ringMu.Unlock()

	out := make([][]edge.Edge, 0, rm.ringN)
	start := (rm.ringAt - rm.ringN + len(rm.ring)) % len(rm.ring)
	for i := 0; i < rm.ringN; i++ {
		out = append(out, rm.ring[(start+i)%len(rm.ring)])
	}
	rm.ringN = 0
	rm.ringAt = 0
	return out
}

// NumWaiting returns the total number of in-flight matches across every
// slot, for metrics and tests.
func (rm *ResultMap) NumWaiting() int {
	total := 0
	for i := range rm.slots {
		rm.slots[i].mu.Lock()
		total += len(rm.slots[i].matches)
		rm.slots[i].mu.Unlock()
	}
	return total
}
