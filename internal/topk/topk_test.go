package topk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadWindowShape(t *testing.T) {
	_, err := New(10, 0, 2)
	assert.Error(t, err)
	_, err = New(10, 10, 2) // numDormant = 0
	assert.Error(t, err)
}

func TestSketchTracksMostFrequentKey(t *testing.T) {
	s, err := New(20, 5, 2)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		s.Add("hot")
	}
	s.Add("cold")
	// Fill out the rest of the active block then roll several blocks so
	// global stats populate.
	for block := 0; block < 3; block++ {
		for i := 0; i < 5; i++ {
			s.Add("hot")
		}
	}

	keys := s.Keys()
	require.NotEmpty(t, keys)
	assert.Equal(t, "hot", keys[0])
}

func TestFrequenciesSumBoundedByOne(t *testing.T) {
	s, err := New(20, 5, 2)
	require.NoError(t, err)
	for block := 0; block < 5; block++ {
		for i := 0; i < 5; i++ {
			s.Add("a")
		}
	}
	freqs := s.Frequencies()
	var total float64
	for _, f := range freqs {
		total += f
	}
	assert.LessOrEqual(t, total, 1.0+1e-9)
}

func TestOldDormantBlocksEvicted(t *testing.T) {
	s, err := New(10, 5, 2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.Add("first")
	}
	for block := 0; block < 10; block++ {
		for i := 0; i < 5; i++ {
			s.Add("second")
		}
	}

	keys := s.Keys()
	for _, k := range keys {
		assert.NotEqual(t, "first", k)
	}
}
