package query

import "fmt"

// Spec is the JSON-serializable description of a subgraph query that
// samctl's register-query command posts to a node, compiled into a
// Builder the same way the teacher's cluster package exchanges plain
// JSON structs between coordinator and node over HTTP.
type Spec struct {
	Edges     []EdgeSpec `json:"edges"`
	MaxOffset float64    `json:"max_offset,omitempty"`

	// ZeroRelativeToStart resolves a match's anchor time to its first
	// edge's start time when true (the default, so it is omitted from
	// the zero value) or its end time when explicitly set false.
	ZeroRelativeToStart *bool `json:"zero_relative_to_start,omitempty"`
}

// EdgeSpec is one edge of a Spec.
type EdgeSpec struct {
	Source            string                 `json:"source"`
	EdgeID            string                 `json:"edge_id"`
	Target            string                 `json:"target"`
	StartTime         *RangeSpec             `json:"start_time,omitempty"`
	EndTime           *RangeSpec             `json:"end_time,omitempty"`
	VertexConstraints []VertexConstraintSpec `json:"vertex_constraints,omitempty"`
}

// RangeSpec bounds a time field. Eq pins both bounds to the same value;
// Gte/Lte set only the respective bound, leaving the other to Finalize's
// max-offset inference.
type RangeSpec struct {
	Gte *float64 `json:"gte,omitempty"`
	Lte *float64 `json:"lte,omitempty"`
	Eq  *float64 `json:"eq,omitempty"`
}

// VertexConstraintSpec is the wire form of a VertexConstraint; Op is one
// of "eq" (default), "in", "not_in".
type VertexConstraintSpec struct {
	Variable    string `json:"variable"`
	FeatureName string `json:"feature_name,omitempty"`
	Value       string `json:"value,omitempty"`
	Op          string `json:"op,omitempty"`
}

// Compile builds a finalized Query from spec.
func Compile(spec Spec) (*Query, error) {
	if len(spec.Edges) == 0 {
		return nil, fmt.Errorf("query: spec has no edges")
	}

	b := NewBuilder()
	if spec.MaxOffset > 0 {
		if err := b.SetMaxOffset(spec.MaxOffset); err != nil {
			return nil, err
		}
	}
	if spec.ZeroRelativeToStart != nil {
		b.SetZeroRelativeToStart(*spec.ZeroRelativeToStart)
	}

	for _, e := range spec.Edges {
		if err := b.AddEdge(e.Source, e.EdgeID, e.Target); err != nil {
			return nil, err
		}
		if err := applyRange(b, StartTime, e.EdgeID, e.StartTime); err != nil {
			return nil, err
		}
		if err := applyRange(b, EndTime, e.EdgeID, e.EndTime); err != nil {
			return nil, err
		}
		for _, vc := range e.VertexConstraints {
			op, err := parseNodeOp(vc.Op)
			if err != nil {
				return nil, err
			}
			b.AddVertexConstraint(VertexConstraint{
				Variable:    vc.Variable,
				FeatureName: vc.FeatureName,
				Value:       vc.Value,
				Op:          op,
			})
		}
	}

	return b.Finalize()
}

func applyRange(b *Builder, fn EdgeFunction, edgeID string, r *RangeSpec) error {
	if r == nil {
		return nil
	}
	if r.Eq != nil {
		return b.AddTimeConstraint(fn, edgeID, Assignment, *r.Eq)
	}
	if r.Gte != nil {
		if err := b.AddTimeConstraint(fn, edgeID, GreaterThanEqual, *r.Gte); err != nil {
			return err
		}
	}
	if r.Lte != nil {
		if err := b.AddTimeConstraint(fn, edgeID, LessThanEqual, *r.Lte); err != nil {
			return err
		}
	}
	return nil
}

func parseNodeOp(s string) (NodeOperator, error) {
	switch s {
	case "", "eq":
		return NodeEqual, nil
	case "in":
		return NodeIn, nil
	case "not_in":
		return NodeNotIn, nil
	default:
		return 0, fmt.Errorf("query: unknown vertex constraint op %q", s)
	}
}
