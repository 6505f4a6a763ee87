package mangostransport

import (
	"context"
	"testing"
	"time"

	_ "go.nanomsg.org/mangos/v3/transport/inproc"

	"github.com/dreamware/samgraph/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrFor(node uint32) string {
	switch node {
	case 0:
		return "inproc://node-0"
	case 1:
		return "inproc://node-1"
	default:
		return "inproc://node-unused"
	}
}

func TestFabricPushPullRoundTrip(t *testing.T) {
	nodeA, err := New(0, 2, addrFor, transport.Config{HWM: 16})
	require.NoError(t, err)
	defer nodeA.Close()

	nodeB, err := New(1, 2, addrFor, transport.Config{HWM: 16})
	require.NoError(t, err)
	defer nodeB.Close()

	pusher, err := nodeA.Push(1)
	require.NoError(t, err)
	require.NoError(t, pusher.Send([]byte("hello")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, term, err := nodeB.Pull().Recv(ctx)
	require.NoError(t, err)
	assert.False(t, term)
	assert.Equal(t, []byte("hello"), payload)
}

func TestFabricTerminateSentinel(t *testing.T) {
	nodeA, err := New(0, 2, addrFor, transport.Config{})
	require.NoError(t, err)
	defer nodeA.Close()

	nodeB, err := New(1, 2, addrFor, transport.Config{})
	require.NoError(t, err)
	defer nodeB.Close()

	pusher, err := nodeA.Push(1)
	require.NoError(t, err)
	require.NoError(t, pusher.Terminate())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, term, err := nodeB.Pull().Recv(ctx)
	require.NoError(t, err)
	assert.True(t, term)
	assert.Empty(t, payload)
}
