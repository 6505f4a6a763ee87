package topk

import (
	"testing"

	"github.com/dreamware/samgraph/internal/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPublishesTopKFeature(t *testing.T) {
	fm, err := feature.NewMap(16)
	require.NoError(t, err)
	reg := NewRegistry(fm, "dest-topk", 10, 5, 2)

	for block := 0; block < 3; block++ {
		for i := 0; i < 5; i++ {
			require.NoError(t, reg.Add("v1", "dst-a"))
		}
	}

	f, ok := fm.Lookup("v1", "dest-topk")
	require.True(t, ok)
	assert.Equal(t, feature.TopK, f.Kind)
	assert.Contains(t, f.TopKKeys, "dst-a")
}

func TestRegistryNoFeatureUntilGlobalStatsExist(t *testing.T) {
	fm, err := feature.NewMap(16)
	require.NoError(t, err)
	reg := NewRegistry(fm, "topk", 10, 5, 2)

	require.NoError(t, reg.Add("v1", "a"))
	_, ok := fm.Lookup("v1", "topk")
	assert.False(t, ok)
}
