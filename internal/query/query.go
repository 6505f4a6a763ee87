package query

import "github.com/dreamware/samgraph/internal/edge"

// FeatureLookup resolves the named feature for a vertex, used to
// evaluate In/NotIn vertex constraints at match time.
type FeatureLookup func(vertex, featureName string) (topKKeys []string, ok bool)

// Query is a finalized subgraph query: an ordered list of edge
// descriptions sorted by start-time lower bound, ready to drive partial
// match advancement. Grounded on SubgraphQuery's post-finalize state.
type Query struct {
	Edges         []EdgeDescription
	MaxOffset     float64
	MaxTimeExtent float64

	// ZeroRelativeToStart resolves spec.md §9's Open Question (a): when
	// true (the default) a match's anchor time is its first edge's
	// start time; when false it is the first edge's end time instead,
	// mirroring SubgraphQuery::zeroTimeRelativeToStart().
	ZeroRelativeToStart bool
}

// Size returns the number of edges in the query.
func (q *Query) Size() int {
	return len(q.Edges)
}

// SatisfiesTimeConstraints reports whether e could be bound to the
// query's ith edge description, given the match's anchor time startTime
// (the absolute time the query's own clock is zeroed against — see
// spec.md §9's Open Question (a) resolution).
func (q *Query) SatisfiesTimeConstraints(i int, e edge.Edge, startTime float64) bool {
	d := q.Edges[i]
	actualStart := e.StartTime
	actualEnd := e.EndTime()

	return actualStart >= d.StartTimeRange[0]+startTime &&
		actualStart <= d.StartTimeRange[1]+startTime &&
		actualEnd >= d.EndTimeRange[0]+startTime &&
		actualEnd <= d.EndTimeRange[1]+startTime
}

// SatisfiesVertexConstraints evaluates every VertexConstraint attached
// to the query's ith edge description against the current variable
// bindings, using lookup to resolve In/NotIn top-k membership.
func (q *Query) SatisfiesVertexConstraints(i int, bindings map[string]string, lookup FeatureLookup) bool {
	d := q.Edges[i]
	for _, c := range d.VertexConstraints {
		if !evaluateConstraint(c, bindings, lookup) {
			return false
		}
	}
	return true
}

func evaluateConstraint(c VertexConstraint, bindings map[string]string, lookup FeatureLookup) bool {
	bound, ok := bindings[c.Variable]
	if !ok {
		return true // not yet bound; nothing to check
	}

	switch c.Op {
	case NodeEqual:
		target := c.Value
		if target == "" {
			target = c.Variable
		}
		return bound == target
	case NodeIn, NodeNotIn:
		keys, ok := lookup(bound, c.FeatureName)
		member := false
		if ok {
			needle := c.Value
			if needle == "" {
				needle = bound
			}
			for _, k := range keys {
				if k == needle {
					member = true
					break
				}
			}
		}
		if c.Op == NodeIn {
			return member
		}
		return !member
	default:
		return false
	}
}
