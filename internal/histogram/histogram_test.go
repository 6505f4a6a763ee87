package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidArgs(t *testing.T) {
	_, err := New(0, 2)
	assert.Error(t, err)
	_, err = New(10, 0)
	assert.Error(t, err)
}

func TestAddAccumulatesTotal(t *testing.T) {
	h, err := New(100, 2)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		h.Add(1)
	}
	assert.InDelta(t, 10, h.Total(), 1e-9)
}

func TestAddEvictsOldValuesEventually(t *testing.T) {
	h, err := New(8, 2)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		h.Add(1)
	}
	// The sketch is approximate but bounded: total must not grow without
	// bound once the window is saturated with identical values.
	assert.Less(t, h.Total(), 2000.0)
	assert.Greater(t, h.Total(), 0.0)
}

func TestNumLevelsAndSlotsArePositive(t *testing.T) {
	h, err := New(64, 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, h.NumLevels(), 1)
	assert.Greater(t, h.NumSlots(), 0)
}

func TestVarianceSketchOfConstantIsZero(t *testing.T) {
	v, err := NewVarianceSketch(50, 2)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		v.Add(5)
	}
	assert.InDelta(t, 5, v.Mean(), 1e-6)
	assert.InDelta(t, 0, v.Variance(), 1e-6)
}

func TestVarianceSketchOfVaryingValues(t *testing.T) {
	v, err := NewVarianceSketch(50, 2)
	require.NoError(t, err)
	for _, x := range []float64{1, 2, 3, 4, 5} {
		v.Add(x)
	}
	assert.InDelta(t, 3, v.Mean(), 1e-6)
	assert.Greater(t, v.Variance(), 0.0)
}
