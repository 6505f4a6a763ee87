package query

import (
	"fmt"
	"math"
	"sort"
)

// MaxStartEndOffset is the default maximum number of seconds the
// builder will assume between an edge's start and end time when one of
// the two is left unconstrained, mirroring
// SubgraphQuery's MAX_START_END_OFFSET.
const MaxStartEndOffset = 100

type pendingEdge struct {
	source, target string
	edgeID         string
	start, end     timeRange
	vertexCons     []VertexConstraint
}

// Builder accumulates edge expressions, time constraints, and vertex
// constraints for a subgraph query, then produces a finalized Query.
// Grounded on SubgraphQuery::addExpression + finalize.
type Builder struct {
	edges               map[string]*pendingEdge
	maxOffset           float64
	zeroRelativeToStart bool
}

// NewBuilder constructs an empty Builder. Queries are start-anchored
// (ZeroRelativeToStart) by default; call SetZeroRelativeToStart(false)
// to anchor on the first edge's end time instead.
func NewBuilder() *Builder {
	return &Builder{edges: make(map[string]*pendingEdge), maxOffset: MaxStartEndOffset, zeroRelativeToStart: true}
}

// SetMaxOffset overrides the default maximum start/end time offset used
// to fill in an unconstrained time bound during Finalize.
func (b *Builder) SetMaxOffset(offset float64) error {
	if offset < 0 {
		return fmt.Errorf("query: max offset must be non-negative, got %g", offset)
	}
	b.maxOffset = offset
	return nil
}

// SetZeroRelativeToStart controls whether a match's anchor time is its
// first edge's start time (true, the default) or end time (false), per
// spec.md §9's Open Question (a).
func (b *Builder) SetZeroRelativeToStart(v bool) {
	b.zeroRelativeToStart = v
}

func (b *Builder) edge(edgeID string) *pendingEdge {
	e, ok := b.edges[edgeID]
	if !ok {
		e = &pendingEdge{edgeID: edgeID, start: unboundedRange(), end: unboundedRange()}
		b.edges[edgeID] = e
	}
	return e
}

// AddEdge declares edgeID as an edge from source to target. Calling it
// again for the same edgeID with a different source or target is an
// error; calling it again with the same source/target (e.g. after a
// time constraint created the entry first) fills in whichever side was
// still unset.
func (b *Builder) AddEdge(source, edgeID, target string) error {
	e := b.edge(edgeID)
	if e.source == "" {
		e.source = source
	} else if e.source != source {
		return fmt.Errorf("query: edge %q source conflict: already %q, got %q", edgeID, e.source, source)
	}
	if e.target == "" {
		e.target = target
	} else if e.target != target {
		return fmt.Errorf("query: edge %q target conflict: already %q, got %q", edgeID, e.target, target)
	}
	return nil
}

// AddTimeConstraint applies op/value to the named time function of
// edgeID, per SubgraphQuery::addExpression(TimeEdgeExpression).
func (b *Builder) AddTimeConstraint(fn EdgeFunction, edgeID string, op EdgeOperator, value float64) error {
	e := b.edge(edgeID)
	var r *timeRange
	switch fn {
	case StartTime:
		r = &e.start
	case EndTime:
		r = &e.end
	default:
		return fmt.Errorf("query: unknown edge function %v", fn)
	}

	switch op {
	case Assignment:
		r.first, r.second = value, value
	case GreaterThan, GreaterThanEqual:
		r.first = value
	case LessThan, LessThanEqual:
		r.second = value
	default:
		return fmt.Errorf("query: operator %v not valid in a time constraint", op)
	}
	return nil
}

// AddVertexConstraint attaches a constraint on the vertex bound to
// variable to every edge description mentioning it, evaluated at match
// time against the feature named featureName.
func (b *Builder) AddVertexConstraint(c VertexConstraint) {
	for _, e := range b.edges {
		if e.source == c.Variable || e.target == c.Variable {
			e.vertexCons = append(e.vertexCons, c)
		}
	}
}

// Finalize validates every accumulated edge, fills in any unconstrained
// time bound from the sibling bound and the configured max offset, sorts
// the edges by start time (equal start times by edge id), and returns
// the finalized Query.
func (b *Builder) Finalize() (*Query, error) {
	if len(b.edges) == 0 {
		return nil, fmt.Errorf("query: cannot finalize a query with no edges")
	}

	descs := make([]EdgeDescription, 0, len(b.edges))
	for _, e := range b.edges {
		if e.source == "" || e.target == "" {
			return nil, fmt.Errorf("query: edge %q is missing a source and/or target", e.edgeID)
		}
		if err := fixTimeRange(&e.start, &e.end, b.maxOffset); err != nil {
			return nil, fmt.Errorf("query: edge %q: %w", e.edgeID, err)
		}
		descs = append(descs, EdgeDescription{
			Source:            e.source,
			EdgeID:            e.edgeID,
			Target:            e.target,
			StartTimeRange:    [2]float64{e.start.first, e.start.second},
			EndTimeRange:      [2]float64{e.end.first, e.end.second},
			VertexConstraints: e.vertexCons,
		})
	}

	sort.Slice(descs, func(i, j int) bool {
		if descs[i].StartTimeRange[0] != descs[j].StartTimeRange[0] {
			return descs[i].StartTimeRange[0] < descs[j].StartTimeRange[0]
		}
		return descs[i].EdgeID < descs[j].EdgeID
	})

	maxExtent := descs[0].EndTimeRange[1]
	for _, d := range descs[1:] {
		if d.EndTimeRange[1] > maxExtent {
			maxExtent = d.EndTimeRange[1]
		}
	}

	return &Query{
		Edges:               descs,
		MaxOffset:           b.maxOffset,
		MaxTimeExtent:       maxExtent,
		ZeroRelativeToStart: b.zeroRelativeToStart,
	}, nil
}

// fixTimeRange replicates EdgeDescription::fixTimeRange's sixteen-case
// table, narrowing whichever of start/end range is still unbounded
// using the other and maxOffset, and rejects edges where neither range
// carries any information at all.
func fixTimeRange(start, end *timeRange, maxOffset float64) error {
	sb, se := start.isLowerBound(), start.isUpperBound()
	eb, ee := end.isLowerBound(), end.isUpperBound()

	switch {
	case eb && ee:
		// End range fully bound; start range filled in below if needed.
	case eb && !ee:
		end.second = end.first + maxOffset
	case !eb && ee:
		end.first = end.second - maxOffset
	case !eb && !ee && sb && se:
		end.first = start.first
		end.second = start.second + maxOffset
	case !eb && !ee && sb && !se:
		end.first = start.first
		end.second = math.Inf(1)
	case !eb && !ee && !sb && se:
		end.first = start.second - maxOffset
		end.second = start.second + maxOffset
	default:
		return fmt.Errorf("no time constraint fully determines the edge's range")
	}

	// Narrow the start range from the (now resolved) end range whenever
	// the start range itself carries no information.
	if !sb && !se {
		start.first = end.first - maxOffset
		if !math.IsInf(end.second, 1) {
			start.second = end.second - maxOffset
		}
	}
	if !start.isUpperBound() {
		start.second = start.first + maxOffset
	}
	if !start.isLowerBound() {
		start.first = start.second - maxOffset
	}
	if !end.isUpperBound() {
		end.second = end.first + maxOffset
	}

	return nil
}
