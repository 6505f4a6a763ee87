// Package nodelink glues internal/transport's raw byte fabric to the
// graph store: it encodes edges and edge requests onto the wire and
// decodes incoming frames back into a graphstore.Frame. Edges and
// requests share one push/pull fabric per node pair, so request frames
// carry a short tag prefix that tells them apart from edge frames.
package nodelink

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/graphstore"
	"github.com/dreamware/samgraph/internal/request"
	"github.com/dreamware/samgraph/internal/transport"
)

var requestPrefix = []byte("REQ:")

// EncodeEdge renders e as a JSON frame, the teacher's own wire
// convention for inter-node payloads (internal/cluster.PostJSON).
func EncodeEdge(e edge.Edge) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "nodelink: encoding edge")
	}
	return payload, nil
}

// EncodeRequest renders r as a tagged request.WireFormat frame.
func EncodeRequest(r request.Request) []byte {
	var wf request.WireFormat
	return append(append([]byte{}, requestPrefix...), []byte(wf.Encode(r))...)
}

// Decode distinguishes an edge frame from a request frame by its tag
// prefix and decodes it into a graphstore.Frame.
func Decode(payload []byte) (graphstore.Frame, error) {
	if bytes.HasPrefix(payload, requestPrefix) {
		var wf request.WireFormat
		r, err := wf.Decode(string(payload[len(requestPrefix):]))
		if err != nil {
			return graphstore.Frame{}, errors.Wrap(err, "nodelink: decoding request frame")
		}
		return graphstore.Frame{Request: r, IsRequest: true}, nil
	}

	var e edge.Edge
	if err := json.Unmarshal(payload, &e); err != nil {
		return graphstore.Frame{}, errors.Wrap(err, "nodelink: decoding edge frame")
	}
	return graphstore.Frame{Edge: e}, nil
}

// Sender implements request.Sender (deliver a matched edge) and
// graphstore.RequestSender (deliver an outgoing edge request) over a
// single transport.Fabric, so the graph store and its request map share
// one set of sockets per peer.
type Sender struct {
	Fabric transport.Fabric
}

// Send pushes e to nodeID, satisfying request.Sender.
func (s *Sender) Send(nodeID uint32, e edge.Edge) error {
	payload, err := EncodeEdge(e)
	if err != nil {
		return err
	}
	pusher, err := s.Fabric.Push(nodeID)
	if err != nil {
		return errors.Wrapf(err, "nodelink: no pusher for node %d", nodeID)
	}
	return pusher.Send(payload)
}

// SendRequest pushes r to nodeID, satisfying graphstore.RequestSender.
func (s *Sender) SendRequest(nodeID uint32, r request.Request) error {
	pusher, err := s.Fabric.Push(nodeID)
	if err != nil {
		return errors.Wrapf(err, "nodelink: no pusher for node %d", nodeID)
	}
	return pusher.Send(EncodeRequest(r))
}
