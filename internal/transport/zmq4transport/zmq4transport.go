// Package zmq4transport backs internal/transport.Fabric with ZeroMQ
// PUSH/PULL sockets via github.com/pebbe/zmq4, the primary transport
// named in spec.md §6. Grounded directly on
// original_source/SamSrc/ZeroMQPushPull.hpp: one PULL socket bound to
// this node's own address, one PUSH socket per peer connected to that
// peer's bound address, SNDHWM applied to every push socket, and an
// empty frame as the terminate sentinel.
package zmq4transport

import (
	"context"
	"fmt"
	"time"

	"github.com/pebbe/zmq4"
	"github.com/pkg/errors"

	"github.com/dreamware/samgraph/internal/transport"
)

// Fabric is a zmq4-backed transport.Fabric for a cluster of numNodes
// nodes. addrFor(i) must return "host:port" for node i — the address its
// pull socket binds to and every peer's push socket connects to.
type Fabric struct {
	nodeID   uint32
	numNodes uint32

	pushers map[uint32]*pusher
	puller  *puller
}

// New constructs a Fabric, binding a PULL socket for this node and a
// PUSH socket to every other node. addrFor resolves a node index to the
// "host:port" its pull socket listens on, the same way ZeroMQPushPull's
// constructor combines hostnames[] and ports[].
func New(nodeID uint32, numNodes uint32, addrFor func(node uint32) string, cfg transport.Config) (*Fabric, error) {
	f := &Fabric{
		nodeID:   nodeID,
		numNodes: numNodes,
		pushers:  make(map[uint32]*pusher, numNodes),
	}

	pullSocket, err := zmq4.NewSocket(zmq4.PULL)
	if err != nil {
		return nil, errors.Wrap(err, "zmq4transport: creating pull socket")
	}
	if err := pullSocket.Bind("tcp://" + addrFor(nodeID)); err != nil {
		return nil, errors.Wrapf(err, "zmq4transport: node %d binding pull socket", nodeID)
	}
	f.puller = &puller{socket: pullSocket}

	for i := uint32(0); i < numNodes; i++ {
		if i == nodeID {
			continue
		}
		sock, err := zmq4.NewSocket(zmq4.PUSH)
		if err != nil {
			return nil, errors.Wrapf(err, "zmq4transport: creating push socket to node %d", i)
		}
		if cfg.HWM > 0 {
			if err := sock.SetSndhwm(cfg.HWM); err != nil {
				return nil, errors.Wrapf(err, "zmq4transport: setting hwm for node %d", i)
			}
		}
		if cfg.SendTimeoutMs > 0 {
			if err := sock.SetSndtimeo(time.Duration(cfg.SendTimeoutMs) * time.Millisecond); err != nil {
				return nil, errors.Wrapf(err, "zmq4transport: setting send timeout for node %d", i)
			}
		}
		if err := sock.Connect("tcp://" + addrFor(i)); err != nil {
			return nil, errors.Wrapf(err, "zmq4transport: node %d connecting push socket to node %d", nodeID, i)
		}
		f.pushers[i] = &pusher{socket: sock}
	}

	return f, nil
}

// Push returns the Pusher bound to node.
func (f *Fabric) Push(node uint32) (transport.Pusher, error) {
	p, ok := f.pushers[node]
	if !ok {
		return nil, fmt.Errorf("zmq4transport: no push socket for node %d", node)
	}
	return p, nil
}

// Pull returns this fabric's single pull socket.
func (f *Fabric) Pull() transport.Puller {
	return f.puller
}

// Close tears down every socket this fabric owns.
func (f *Fabric) Close() error {
	var firstErr error
	for _, p := range f.pushers {
		if err := p.socket.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := f.puller.socket.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type pusher struct {
	socket *zmq4.Socket
}

func (p *pusher) Send(payload []byte) error {
	_, err := p.socket.SendBytes(payload, 0)
	return err
}

func (p *pusher) Terminate() error {
	_, err := p.socket.SendBytes(transport.Terminate, 0)
	return err
}

type puller struct {
	socket *zmq4.Socket
}

// Recv polls the socket with a short timeout so ctx cancellation is
// observed promptly, since zmq4's blocking recv has no context support.
func (p *puller) Recv(ctx context.Context) ([]byte, bool, error) {
	poller := zmq4.NewPoller()
	poller.Add(p.socket, zmq4.POLLIN)

	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		polled, err := poller.Poll(50 * time.Millisecond)
		if err != nil {
			return nil, false, err
		}
		if len(polled) == 0 {
			continue
		}

		payload, err := p.socket.RecvBytes(0)
		if err != nil {
			return nil, false, err
		}
		return payload, transport.IsTerminate(payload), nil
	}
}

func (p *puller) Close() error {
	return p.socket.Close()
}
