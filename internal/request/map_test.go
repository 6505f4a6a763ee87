package request

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []uint32
	fail bool
}

func (f *fakeSender) Send(nodeID uint32, e edge.Edge) error {
	if f.fail {
		return fmt.Errorf("boom")
	}
	f.mu.Lock()
	f.sent = append(f.sent, nodeID)
	f.mu.Unlock()
	return nil
}

func noPartition(string) uint32 { return 0 }

func TestAddRequestRejectsUnconstrained(t *testing.T) {
	sender := &fakeSender{}
	m, err := New(16, 3, noPartition, sender)
	require.NoError(t, err)

	err = m.AddRequest(NewUnboundedRequest("", "", 1))
	assert.Error(t, err)
}

func TestProcessDeliversMatchingSource(t *testing.T) {
	sender := &fakeSender{}
	m, err := New(16, 3, func(v string) uint32 { return 99 }, sender)
	require.NoError(t, err)

	require.NoError(t, m.AddRequest(NewUnboundedRequest("v1", "", 2)))

	count := m.Process(edge.Edge{Source: "v1", Target: "v2", StartTime: 1, Duration: 1})
	assert.Equal(t, 1, count)
	assert.Equal(t, []uint32{2}, sender.sent)
	assert.Equal(t, int64(1), m.TotalPushed())
}

func TestProcessSkipsWhenReturnNodeOwnsLocally(t *testing.T) {
	sender := &fakeSender{}
	partition := func(v string) uint32 {
		if v == "v2" {
			return 2
		}
		return 0
	}
	m, err := New(16, 3, partition, sender)
	require.NoError(t, err)

	require.NoError(t, m.AddRequest(NewUnboundedRequest("v1", "", 2)))

	m.Process(edge.Edge{Source: "v1", Target: "v2", StartTime: 1, Duration: 1})
	assert.Empty(t, sender.sent)
}

func TestProcessExpiresOldRequests(t *testing.T) {
	sender := &fakeSender{}
	m, err := New(16, 3, noPartition, sender)
	require.NoError(t, err)

	r := NewUnboundedRequest("v1", "", 2)
	r.EndTimeSecond = 5
	require.NoError(t, m.AddRequest(r))

	count := m.Process(edge.Edge{Source: "v1", Target: "v2", StartTime: 100, Duration: 1})
	assert.Equal(t, 0, count)
	assert.Empty(t, sender.sent)
}

func TestProcessDedupesMultiMatchWithinOneCall(t *testing.T) {
	sender := &fakeSender{}
	m, err := New(16, 3, noPartition, sender)
	require.NoError(t, err)

	require.NoError(t, m.AddRequest(NewUnboundedRequest("v1", "", 5)))
	require.NoError(t, m.AddRequest(NewUnboundedRequest("", "v2", 5)))

	m.Process(edge.Edge{Source: "v1", Target: "v2", StartTime: 1, Duration: 1})
	assert.Len(t, sender.sent, 1, "node 5 should only receive the edge once per process() call")
}

func TestProcessReportsSendFailures(t *testing.T) {
	sender := &fakeSender{fail: true}
	m, err := New(16, 3, noPartition, sender)
	require.NoError(t, err)

	require.NoError(t, m.AddRequest(NewUnboundedRequest("v1", "", 2)))
	m.Process(edge.Edge{Source: "v1", Target: "v2", StartTime: 1, Duration: 1})
	assert.Equal(t, int64(1), m.TotalFailed())
}
