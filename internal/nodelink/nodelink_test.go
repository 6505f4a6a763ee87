package nodelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/request"
	"github.com/dreamware/samgraph/internal/transport"
)

func TestDecodeRoundTripsEdgeFrame(t *testing.T) {
	e := edge.Edge{Source: "a", Target: "b", StartTime: 1, Duration: 2, SamID: 9}
	payload, err := EncodeEdge(e)
	require.NoError(t, err)

	f, err := Decode(payload)
	require.NoError(t, err)
	assert.False(t, f.IsRequest)
	assert.Equal(t, e, f.Edge)
}

func TestDecodeRoundTripsRequestFrame(t *testing.T) {
	r := request.NewUnboundedRequest("a", "", 3)
	payload := EncodeRequest(r)

	f, err := Decode(payload)
	require.NoError(t, err)
	assert.True(t, f.IsRequest)
	assert.Equal(t, r.Source, f.Request.Source)
	assert.Equal(t, r.ReturnNode, f.Request.ReturnNode)
}

func TestDecodeRejectsMalformedEdgeFrame(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

type fakePusher struct {
	sent [][]byte
}

func (p *fakePusher) Send(payload []byte) error {
	p.sent = append(p.sent, payload)
	return nil
}

func (p *fakePusher) Terminate() error { return nil }

type fakeFabric struct {
	pushers map[uint32]*fakePusher
}

func (f *fakeFabric) Push(nodeID uint32) (transport.Pusher, error) {
	p, ok := f.pushers[nodeID]
	if !ok {
		p = &fakePusher{}
		f.pushers[nodeID] = p
	}
	return p, nil
}

func (f *fakeFabric) Pull() transport.Puller { return nil }
func (f *fakeFabric) Close() error           { return nil }

func TestSenderSendEncodesAndPushesEdge(t *testing.T) {
	fabric := &fakeFabric{pushers: make(map[uint32]*fakePusher)}
	sender := &Sender{Fabric: fabric}

	e := edge.Edge{Source: "a", Target: "b", StartTime: 1, Duration: 1}
	require.NoError(t, sender.Send(2, e))

	f, err := Decode(fabric.pushers[2].sent[0])
	require.NoError(t, err)
	assert.Equal(t, e, f.Edge)
}

func TestSenderSendRequestEncodesAndPushesRequest(t *testing.T) {
	fabric := &fakeFabric{pushers: make(map[uint32]*fakePusher)}
	sender := &Sender{Fabric: fabric}

	r := request.NewUnboundedRequest("a", "", 5)
	require.NoError(t, sender.SendRequest(1, r))

	f, err := Decode(fabric.pushers[1].sent[0])
	require.NoError(t, err)
	assert.True(t, f.IsRequest)
	assert.Equal(t, "a", f.Request.Source)
}
