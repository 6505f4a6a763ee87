// Package query implements the subgraph query model from spec.md §3/§9:
// an ordered set of edge descriptions (source/edge-id/target variables,
// time-range constraints, vertex constraints) built incrementally and
// then finalized into a form the match engine can advance partial
// matches against. Grounded on
// original_source/SamSrc/{EdgeDescription,SubgraphQuery,Expression}.hpp.
package query

import "math"

// EdgeOperator is a comparison operator usable in a time constraint.
type EdgeOperator int

const (
	LessThan EdgeOperator = iota
	LessThanEqual
	GreaterThan
	GreaterThanEqual
	Assignment
	Equal
)

// EdgeFunction selects which time field of an edge a TimeConstraint
// bounds.
type EdgeFunction int

const (
	StartTime EdgeFunction = iota
	EndTime
)

// NodeOperator is the comparison a VertexConstraint applies to a bound
// variable's value. Equal pins the variable to a literal vertex; In/NotIn
// test membership in a named top-k feature, per spec.md §3's "variable ∈
// top-k-feature" construct.
type NodeOperator int

const (
	NodeEqual NodeOperator = iota
	NodeIn
	NodeNotIn
)

// VertexConstraint restricts the vertex bound to Variable. Equal
// compares against Value directly; In/NotIn look up FeatureName on
// whatever vertex Variable is currently bound to and test top-k
// membership of Value (or, when Value is empty, of the bound value
// itself — "vertex1 in top1000" tests the bound vertex's own presence).
type VertexConstraint struct {
	Variable    string
	FeatureName string
	Value       string
	Op          NodeOperator
}

// timeRange is an inclusive [first, second] bound, defaulting to the
// widest possible range so an unconstrained field never rejects a
// candidate before Finalize narrows it.
type timeRange struct {
	first, second float64
}

func unboundedRange() timeRange {
	return timeRange{first: math.Inf(-1), second: math.Inf(1)}
}

func (r timeRange) isLowerBound() bool  { return !math.IsInf(r.first, -1) }
func (r timeRange) isUpperBound() bool  { return !math.IsInf(r.second, 1) }
func (r timeRange) bothBound() bool     { return r.isLowerBound() && r.isUpperBound() }
func (r timeRange) neitherBound() bool  { return !r.isLowerBound() && !r.isUpperBound() }

// EdgeDescription is one edge in a subgraph query: a source variable, an
// edge identifier, a target variable, and the time ranges its start and
// end must fall in relative to the query's anchor time.
type EdgeDescription struct {
	Source            string
	EdgeID            string
	Target            string
	StartTimeRange    [2]float64
	EndTimeRange      [2]float64
	VertexConstraints []VertexConstraint
}

// UnspecifiedSource reports whether Source was never set.
func (d EdgeDescription) UnspecifiedSource() bool { return d.Source == "" }

// UnspecifiedTarget reports whether Target was never set.
func (d EdgeDescription) UnspecifiedTarget() bool { return d.Target == "" }

func (d EdgeDescription) String() string {
	return d.Source + " " + d.EdgeID + " " + d.Target
}
