// Package querytest provides fixture builders for subgraph-query
// integration tests. BuildWateringHole is grounded directly on
// original_source/ExecutableSrc/WateringHole.cpp: a target vertex that
// visits a commonly-browsed bait site and then, shortly after, talks to
// a controller — the two-hop pattern the watering-hole attack query
// looks for.
package querytest

import (
	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/query"
)

// BuildWateringHole returns the compiled watering-hole query plus a
// sequence of edges that satisfies it: target -> bait starting between
// -5 and 0 seconds, followed by target -> controller starting between 0
// and 10 seconds later.
func BuildWateringHole() (*query.Query, []edge.Edge, error) {
	b := query.NewBuilder()

	if err := b.AddEdge("target", "e0", "bait"); err != nil {
		return nil, nil, err
	}
	if err := b.AddTimeConstraint(query.StartTime, "e0", query.GreaterThanEqual, -5); err != nil {
		return nil, nil, err
	}
	if err := b.AddTimeConstraint(query.StartTime, "e0", query.LessThanEqual, 0); err != nil {
		return nil, nil, err
	}

	if err := b.AddEdge("target", "e1", "controller"); err != nil {
		return nil, nil, err
	}
	if err := b.AddTimeConstraint(query.StartTime, "e1", query.GreaterThan, 0); err != nil {
		return nil, nil, err
	}
	if err := b.AddTimeConstraint(query.StartTime, "e1", query.LessThan, 10); err != nil {
		return nil, nil, err
	}

	q, err := b.Finalize()
	if err != nil {
		return nil, nil, err
	}

	edges := []edge.Edge{
		{Source: "target", Target: "bait", StartTime: -1, Duration: 1},
		{Source: "target", Target: "controller", StartTime: 5, Duration: 1},
	}
	return q, edges, nil
}
