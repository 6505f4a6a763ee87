package graphidx

import (
	"testing"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEdge(src, trg string, start, dur float64) edge.Edge {
	return edge.Edge{Source: src, Target: trg, StartTime: start, Duration: dur}
}

func TestCSRFindsBySource(t *testing.T) {
	idx := NewCSR(16, 100)
	idx.AddEdge(newEdge("a", "b", 1, 1))
	idx.AddEdge(newEdge("a", "c", 2, 1))
	idx.AddEdge(newEdge("z", "q", 1, 1))

	targetOf := func(e edge.Edge) string { return e.Target }
	found := idx.FindEdges(Query{
		Key:             "a",
		StartTimeFirst:  0,
		StartTimeSecond: 10,
		EndTimeFirst:    0,
		EndTimeSecond:   10,
	}, targetOf, idx.CurrentTime())

	require.Len(t, found, 2)
}

func TestCSCFindsByTarget(t *testing.T) {
	idx := NewCSC(16, 100)
	idx.AddEdge(newEdge("a", "b", 1, 1))
	idx.AddEdge(newEdge("c", "b", 2, 1))

	sourceOf := func(e edge.Edge) string { return e.Source }
	found := idx.FindEdges(Query{
		Key:             "b",
		StartTimeFirst:  0,
		StartTimeSecond: 10,
		EndTimeFirst:    0,
		EndTimeSecond:   10,
	}, sourceOf, idx.CurrentTime())

	assert.Len(t, found, 2)
}

func TestCounterpartConstraintFilters(t *testing.T) {
	idx := NewCSR(16, 100)
	idx.AddEdge(newEdge("a", "b", 1, 1))
	idx.AddEdge(newEdge("a", "c", 2, 1))

	targetOf := func(e edge.Edge) string { return e.Target }
	found := idx.FindEdges(Query{
		Key:             "a",
		Counterpart:     "b",
		CounterpartSet:  true,
		StartTimeFirst:  0,
		StartTimeSecond: 10,
		EndTimeFirst:    0,
		EndTimeSecond:   10,
	}, targetOf, idx.CurrentTime())

	require.Len(t, found, 1)
	assert.Equal(t, "b", found[0].Target)
}

func TestExpiredEdgesAreEvicted(t *testing.T) {
	idx := NewCSR(16, 5)
	idx.AddEdge(newEdge("a", "b", 0, 1))
	idx.AddEdge(newEdge("a", "c", 100, 1)) // advances currentTime far past window

	targetOf := func(e edge.Edge) string { return e.Target }
	found := idx.FindEdges(Query{
		Key:             "a",
		StartTimeFirst:  0,
		StartTimeSecond: 200,
		EndTimeFirst:    0,
		EndTimeSecond:   200,
	}, targetOf, idx.CurrentTime())

	for _, e := range found {
		assert.NotEqual(t, "b", e.Target)
	}
	assert.Equal(t, 1, idx.CountEdges())
}

func TestCountEdges(t *testing.T) {
	idx := NewCSR(8, 1000)
	idx.AddEdge(newEdge("a", "b", 1, 1))
	idx.AddEdge(newEdge("a", "c", 2, 1))
	idx.AddEdge(newEdge("d", "e", 3, 1))
	assert.Equal(t, 3, idx.CountEdges())
}
