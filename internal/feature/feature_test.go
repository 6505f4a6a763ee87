package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeScalarReplaces(t *testing.T) {
	a := NewScalar(1)
	b := NewScalar(2)
	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, 2.0, merged.Scalar)
}

func TestMergeVertexMapUnions(t *testing.T) {
	a := NewVertexMap(map[string]Feature{"x": NewScalar(1)})
	b := NewVertexMap(map[string]Feature{"y": NewScalar(2)})
	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Len(t, merged.VertexMap, 2)
	assert.Equal(t, 1.0, merged.VertexMap["x"].Scalar)
	assert.Equal(t, 2.0, merged.VertexMap["y"].Scalar)
}

func TestMergeKindMismatch(t *testing.T) {
	_, err := NewScalar(1).Merge(NewBool(true))
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	a := NewTopK([]string{"k1", "k2"}, []float64{0.5, 0.3})
	b := a.Clone()
	b.TopKKeys[0] = "changed"
	assert.Equal(t, "k1", a.TopKKeys[0])
}

func TestInTopK(t *testing.T) {
	f := NewTopK([]string{"a", "b"}, []float64{0.6, 0.4})
	assert.True(t, f.InTopK("a"))
	assert.False(t, f.InTopK("z"))
	assert.False(t, NewScalar(1).InTopK("a"))
}

func TestApplyWeighted(t *testing.T) {
	weights := map[string]float64{"scalar": 2.0, "true": 5.0, "hot": 1.5}
	assert.Equal(t, 4.0, ApplyWeighted(NewScalar(2), weights))
	assert.Equal(t, 5.0, ApplyWeighted(NewBool(true), weights))
	assert.Equal(t, 0.0, ApplyWeighted(NewBool(false), weights))
	topk := NewTopK([]string{"hot", "cold"}, []float64{0.8, 0.2})
	assert.InDelta(t, 1.2, ApplyWeighted(topk, weights), 1e-9)
}
