package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gte(v float64) *RangeSpec { return &RangeSpec{Gte: &v} }
func lte(v float64) *RangeSpec { return &RangeSpec{Lte: &v} }

func TestCompileBuildsTwoHopQuery(t *testing.T) {
	spec := Spec{
		Edges: []EdgeSpec{
			{Source: "v1", EdgeID: "e1", Target: "v2", StartTime: gte(0), EndTime: lte(5)},
			{Source: "v2", EdgeID: "e2", Target: "v3", StartTime: gte(0), EndTime: lte(10)},
		},
	}

	q, err := Compile(spec)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Size())
}

func TestCompileRejectsEmptySpec(t *testing.T) {
	_, err := Compile(Spec{})
	assert.Error(t, err)
}

func TestCompileAppliesVertexConstraints(t *testing.T) {
	spec := Spec{
		Edges: []EdgeSpec{
			{
				Source: "v1", EdgeID: "e1", Target: "v2",
				StartTime: gte(0), EndTime: lte(5),
				VertexConstraints: []VertexConstraintSpec{
					{Variable: "v2", FeatureName: "top-talkers", Op: "in"},
				},
			},
		},
	}

	q, err := Compile(spec)
	require.NoError(t, err)
	require.Len(t, q.Edges[0].VertexConstraints, 1)
	assert.Equal(t, NodeIn, q.Edges[0].VertexConstraints[0].Op)
}

func TestCompileRejectsUnknownOp(t *testing.T) {
	spec := Spec{
		Edges: []EdgeSpec{
			{
				Source: "v1", EdgeID: "e1", Target: "v2",
				StartTime: gte(0), EndTime: lte(5),
				VertexConstraints: []VertexConstraintSpec{{Variable: "v2", Op: "bogus"}},
			},
		},
	}
	_, err := Compile(spec)
	assert.Error(t, err)
}
