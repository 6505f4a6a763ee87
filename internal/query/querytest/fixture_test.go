package querytest

import (
	"testing"

	"github.com/dreamware/samgraph/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWateringHoleCompletesOnFixtureEdges(t *testing.T) {
	q, edges, err := BuildWateringHole()
	require.NoError(t, err)
	require.Len(t, edges, 2)

	rm := match.NewResultMap(q, nil, nil, nil, 8, 4)

	completed := rm.Process(edges[0], edges[0].StartTime)
	assert.Empty(t, completed)

	completed = rm.Process(edges[1], edges[1].StartTime)
	require.Len(t, completed, 1)
	assert.True(t, completed[0].Complete())
}
