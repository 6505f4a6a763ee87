// Package match implements partial subgraph matches and the sharded
// result map that advances them against incoming edges, per spec.md
// §3/§4.3. Grounded on original_source/SamSrc/{SubgraphQueryResult,
// SubgraphQueryResultMap}.hpp: a partial match is an immutable,
// copy-on-add value so that adding a candidate edge never mutates a
// match another goroutine might be advancing concurrently.
package match

import (
	"fmt"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/graphidx"
	"github.com/dreamware/samgraph/internal/query"
	"github.com/dreamware/samgraph/internal/request"
)

// PartialMatch tracks progress toward satisfying a query: which edge
// index it is currently trying to fulfill, the variable bindings
// established so far, and the edges bound to each query edge.
type PartialMatch struct {
	query      *query.Query
	lookup     query.FeatureLookup
	bindings   map[string]string
	edges      []edge.Edge
	seen       map[edge.Fingerprint]bool
	currentIdx int
	startTime  float64
	expireTime float64
}

// New constructs a PartialMatch whose first edge is already satisfied by
// first. q must be finalized. lookup resolves top-k membership for any
// vertex constraints attached to the query's edge descriptions. Mirrors
// SubgraphQueryResult(query, firstEdge).
func New(q *query.Query, lookup query.FeatureLookup, first edge.Edge) (*PartialMatch, error) {
	anchor := first.StartTime
	if !q.ZeroRelativeToStart {
		anchor = first.EndTime()
	}
	pm := &PartialMatch{
		query:      q,
		lookup:     lookup,
		bindings:   make(map[string]string),
		seen:       make(map[edge.Fingerprint]bool),
		startTime:  anchor,
		expireTime: anchor + q.MaxTimeExtent,
	}
	ok, err := pm.tryAdd(first)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("match: first edge did not satisfy the query's first edge description")
	}
	return pm, nil
}

// Complete reports whether every edge description in the query has been
// satisfied.
func (pm *PartialMatch) Complete() bool {
	return pm.currentIdx == pm.query.Size()
}

// IsExpired reports whether currentTime has passed this match's expiry,
// computed from the match's anchor time (the first edge's start time, or
// its end time when the query is not zero-relative-to-start) plus the
// query's maximum time extent.
func (pm *PartialMatch) IsExpired(currentTime float64) bool {
	return currentTime > pm.expireTime
}

// CurrentSource returns the vertex the next edge description's source
// variable is already bound to, and whether it is bound at all.
func (pm *PartialMatch) CurrentSource() (string, bool) {
	if pm.Complete() {
		return "", false
	}
	v, ok := pm.bindings[pm.query.Edges[pm.currentIdx].Source]
	return v, ok
}

// CurrentTarget returns the vertex the next edge description's target
// variable is already bound to, and whether it is bound at all.
func (pm *PartialMatch) CurrentTarget() (string, bool) {
	if pm.Complete() {
		return "", false
	}
	v, ok := pm.bindings[pm.query.Edges[pm.currentIdx].Target]
	return v, ok
}

// ResultEdges returns the edges bound so far, in query order.
func (pm *PartialMatch) ResultEdges() []edge.Edge {
	return append([]edge.Edge(nil), pm.edges...)
}

// clone returns a deep-enough copy of pm for copy-on-add semantics — the
// bindings and seen maps are copied so mutating the clone never affects
// the original, matching SubgraphQueryResult's copy constructor use in
// addEdge.
func (pm *PartialMatch) clone() *PartialMatch {
	bindings := make(map[string]string, len(pm.bindings))
	for k, v := range pm.bindings {
		bindings[k] = v
	}
	seen := make(map[edge.Fingerprint]bool, len(pm.seen))
	for k, v := range pm.seen {
		seen[k] = v
	}
	return &PartialMatch{
		query:      pm.query,
		lookup:     pm.lookup,
		bindings:   bindings,
		edges:      append([]edge.Edge(nil), pm.edges...),
		seen:       seen,
		currentIdx: pm.currentIdx,
		startTime:  pm.startTime,
		expireTime: pm.expireTime,
	}
}

// AddEdge attempts to extend pm with e. On success it returns a new
// PartialMatch reflecting the addition; pm itself is left unmodified.
// Mirrors SubgraphQueryResult::addEdge's copy-on-add contract, including
// the seenEdges dedup and invariant 1's rule that a candidate edge's
// start time must be non-decreasing relative to the previously bound
// edge's (equal start times may be consecutive).
func (pm *PartialMatch) AddEdge(e edge.Edge) (*PartialMatch, bool, error) {
	if pm.Complete() {
		return nil, false, fmt.Errorf("match: tried to add an edge but the query is already complete")
	}
	if pm.seen[e.Fingerprint()] {
		return nil, false, nil
	}
	if len(pm.edges) > 0 && e.StartTime < pm.edges[len(pm.edges)-1].StartTime {
		return nil, false, nil
	}

	next := pm.clone()
	ok, err := next.tryAdd(e)
	if err != nil || !ok {
		return nil, false, err
	}
	return next, true, nil
}

// tryAdd mutates pm in place, binding e against the current edge
// description. Used both by New (for the first edge) and by the clone
// inside AddEdge.
func (pm *PartialMatch) tryAdd(e edge.Edge) (bool, error) {
	if !pm.query.SatisfiesTimeConstraints(pm.currentIdx, e, pm.startTime) {
		return false, nil
	}

	desc := pm.query.Edges[pm.currentIdx]
	srcBound, hasSrc := pm.bindings[desc.Source]
	trgBound, hasTrg := pm.bindings[desc.Target]

	trial := make(map[string]string, len(pm.bindings)+2)
	for k, v := range pm.bindings {
		trial[k] = v
	}

	switch {
	case hasSrc && !hasTrg:
		if e.Source != srcBound {
			return false, nil
		}
		trial[desc.Target] = e.Target
	case !hasSrc && hasTrg:
		if e.Target != trgBound {
			return false, nil
		}
		trial[desc.Source] = e.Source
	case !hasSrc && !hasTrg:
		trial[desc.Source] = e.Source
		trial[desc.Target] = e.Target
	default:
		if e.Source != srcBound || e.Target != trgBound {
			return false, nil
		}
	}

	if pm.lookup != nil && !pm.query.SatisfiesVertexConstraints(pm.currentIdx, trial, pm.lookup) {
		return false, nil
	}

	pm.bindings = trial
	pm.edges = append(pm.edges, e)
	pm.seen[e.Fingerprint()] = true
	pm.currentIdx++
	return true, nil
}

// NextRequest reports whether advancing this match requires pulling an
// edge from a remote node, and if so builds the Request to file there.
// localOwns reports whether a vertex's edges are indexed on this node;
// when neither of the next edge description's endpoints is bound, or a
// bound endpoint already resolves locally, no request is needed. Mirrors
// SubgraphQueryResult::hash(), generalized to a single OR'd ownership
// check the way internal/request.Map's ownsLocally already is.
func (pm *PartialMatch) NextRequest(localOwns func(vertex string) bool, localNode uint32) (request.Request, bool) {
	if pm.Complete() {
		return request.Request{}, false
	}
	desc := pm.query.Edges[pm.currentIdx]
	src, hasSrc := pm.bindings[desc.Source]
	trg, hasTrg := pm.bindings[desc.Target]

	var r request.Request
	switch {
	case hasSrc && !hasTrg:
		if localOwns(src) {
			return request.Request{}, false
		}
		r = request.NewUnboundedRequest(src, "", localNode)
	case !hasSrc && hasTrg:
		if localOwns(trg) {
			return request.Request{}, false
		}
		r = request.NewUnboundedRequest("", trg, localNode)
	case hasSrc && hasTrg:
		if localOwns(src) || localOwns(trg) {
			return request.Request{}, false
		}
		r = request.NewUnboundedRequest(src, trg, localNode)
	default:
		return request.Request{}, false
	}

	r.StartTimeFirst = desc.StartTimeRange[0] + pm.startTime
	r.StartTimeSecond = desc.StartTimeRange[1] + pm.startTime
	r.EndTimeFirst = desc.EndTimeRange[0] + pm.startTime
	r.EndTimeSecond = desc.EndTimeRange[1] + pm.startTime
	return r, true
}

// NextGraphQueries builds the CSR/CSC lookups §4.3's process-against-
// graph loop needs to check whether an edge already sitting in the
// local index — arrived out of query order, or before this match
// reached this state — could advance pm, one query keyed on whichever
// of the next description's endpoints are already bound. hasCSR/hasCSC
// are false once the corresponding endpoint is still unbound, since
// there is nothing to key a slot scan on.
func (pm *PartialMatch) NextGraphQueries() (csrQuery graphidx.Query, hasCSR bool, cscQuery graphidx.Query, hasCSC bool) {
	if pm.Complete() {
		return
	}
	desc := pm.query.Edges[pm.currentIdx]
	src, hasSrc := pm.bindings[desc.Source]
	trg, hasTrg := pm.bindings[desc.Target]

	base := graphidx.Query{
		StartTimeFirst:  desc.StartTimeRange[0] + pm.startTime,
		StartTimeSecond: desc.StartTimeRange[1] + pm.startTime,
		EndTimeFirst:    desc.EndTimeRange[0] + pm.startTime,
		EndTimeSecond:   desc.EndTimeRange[1] + pm.startTime,
	}

	if hasSrc {
		csrQuery = base
		csrQuery.Key = src
		if hasTrg {
			csrQuery.Counterpart, csrQuery.CounterpartSet = trg, true
		}
		hasCSR = true
	}
	if hasTrg {
		cscQuery = base
		cscQuery.Key = trg
		if hasSrc {
			cscQuery.Counterpart, cscQuery.CounterpartSet = src, true
		}
		hasCSC = true
	}
	return
}
