package feature

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapInsertAndLookup(t *testing.T) {
	m, err := NewMap(16)
	require.NoError(t, err)

	require.NoError(t, m.UpdateOrInsert("v1", "degree", NewScalar(3)))
	f, ok := m.Lookup("v1", "degree")
	require.True(t, ok)
	assert.Equal(t, 3.0, f.Scalar)

	_, ok = m.Lookup("v1", "missing")
	assert.False(t, ok)
	_, ok = m.Lookup("v2", "degree")
	assert.False(t, ok)
}

func TestMapUpdateMerges(t *testing.T) {
	m, err := NewMap(16)
	require.NoError(t, err)

	require.NoError(t, m.UpdateOrInsert("v1", "tags", NewVertexMap(map[string]Feature{"a": NewScalar(1)})))
	require.NoError(t, m.UpdateOrInsert("v1", "tags", NewVertexMap(map[string]Feature{"b": NewScalar(2)})))

	f, ok := m.Lookup("v1", "tags")
	require.True(t, ok)
	assert.Len(t, f.VertexMap, 2)
}

func TestMapExists(t *testing.T) {
	m, err := NewMap(8)
	require.NoError(t, err)
	assert.False(t, m.Exists("v1", "x"))
	require.NoError(t, m.UpdateOrInsert("v1", "x", NewBool(true)))
	assert.True(t, m.Exists("v1", "x"))
}

func TestMapCapacityExhausted(t *testing.T) {
	m, err := NewMap(2)
	require.NoError(t, err)
	require.NoError(t, m.UpdateOrInsert("a", "n", NewScalar(1)))
	require.NoError(t, m.UpdateOrInsert("b", "n", NewScalar(1)))
	err = m.UpdateOrInsert("c", "n", NewScalar(1))
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestMapTopKLookup(t *testing.T) {
	m, err := NewMap(16)
	require.NoError(t, err)

	require.NoError(t, m.UpdateOrInsert("v1", "top-talkers", NewTopK([]string{"a", "b"}, []float64{0.6, 0.4})))

	keys, ok := m.TopKLookup("v1", "top-talkers")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, keys)

	_, ok = m.TopKLookup("v1", "missing")
	assert.False(t, ok)

	require.NoError(t, m.UpdateOrInsert("v2", "scalar-feature", NewScalar(1)))
	_, ok = m.TopKLookup("v2", "scalar-feature")
	assert.False(t, ok, "a non-top-k feature at that slot must not be reported as one")
}

func TestMapConcurrentUpdates(t *testing.T) {
	m, err := NewMap(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("v%d", i%8)
			err := m.UpdateOrInsert(key, "counter", NewScalar(float64(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("v%d", i)
		_, ok := m.Lookup(key, "counter")
		assert.True(t, ok)
	}
}
