// Package mangostransport backs internal/transport.Fabric with
// go.nanomsg.org/mangos/v3's PUSH/PULL protocol, the pure-Go fallback
// transport named in spec.md §4/§6 for builds and tests that cannot
// carry zmq4's cgo dependency. Wire semantics match zmq4transport
// exactly: one PUSH socket per peer, one PULL socket draining every
// peer, empty frame as the terminate sentinel.
package mangostransport

import (
	"context"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pull"
	"go.nanomsg.org/mangos/v3/protocol/push"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"

	"github.com/pkg/errors"

	"github.com/dreamware/samgraph/internal/transport"
)

// Fabric is a mangos-backed transport.Fabric.
type Fabric struct {
	nodeID   uint32
	numNodes uint32

	pushers map[uint32]*pusher
	puller  *puller
}

// New constructs a Fabric the same way zmq4transport.New does: a PULL
// socket bound to this node's own address, and a PUSH socket dialed to
// every other node's address.
func New(nodeID, numNodes uint32, addrFor func(node uint32) string, cfg transport.Config) (*Fabric, error) {
	f := &Fabric{
		nodeID:   nodeID,
		numNodes: numNodes,
		pushers:  make(map[uint32]*pusher, numNodes),
	}

	pullSocket, err := pull.NewSocket()
	if err != nil {
		return nil, errors.Wrap(err, "mangostransport: creating pull socket")
	}
	if err := pullSocket.Listen("tcp://" + addrFor(nodeID)); err != nil {
		return nil, errors.Wrapf(err, "mangostransport: node %d listening on pull socket", nodeID)
	}
	f.puller = &puller{socket: pullSocket}

	for i := uint32(0); i < numNodes; i++ {
		if i == nodeID {
			continue
		}
		sock, err := push.NewSocket()
		if err != nil {
			return nil, errors.Wrapf(err, "mangostransport: creating push socket to node %d", i)
		}
		if cfg.SendTimeoutMs > 0 {
			if err := sock.SetOption(mangos.OptionSendDeadline, time.Duration(cfg.SendTimeoutMs)*time.Millisecond); err != nil {
				return nil, errors.Wrapf(err, "mangostransport: setting send timeout for node %d", i)
			}
		}
		if cfg.HWM > 0 {
			if err := sock.SetOption(mangos.OptionWriteQLen, cfg.HWM); err != nil {
				return nil, errors.Wrapf(err, "mangostransport: setting write queue length for node %d", i)
			}
		}
		if err := sock.Dial("tcp://" + addrFor(i)); err != nil {
			return nil, errors.Wrapf(err, "mangostransport: node %d dialing push socket to node %d", nodeID, i)
		}
		f.pushers[i] = &pusher{socket: sock}
	}

	return f, nil
}

// Push returns the Pusher bound to node.
func (f *Fabric) Push(node uint32) (transport.Pusher, error) {
	p, ok := f.pushers[node]
	if !ok {
		return nil, fmt.Errorf("mangostransport: no push socket for node %d", node)
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
	socket mangos.Socket
}

func (p *pusher) Send(payload []byte) error {
	return p.socket.Send(payload)
}

func (p *pusher) Terminate() error {
	return p.socket.Send(transport.Terminate)
}

type puller struct {
	socket mangos.Socket
}

// Recv blocks on the socket's receive deadline in short slices so ctx
// cancellation is observed promptly.
func (p *puller) Recv(ctx context.Context) ([]byte, bool, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		if err := p.socket.SetOption(mangos.OptionRecvDeadline, 50*time.Millisecond); err != nil {
			return nil, false, err
		}
		payload, err := p.socket.Recv()
		if err != nil {
			if err == mangos.ErrRecvTimeout {
				continue
			}
			return nil, false, err
		}
		return payload, transport.IsTerminate(payload), nil
	}
}

func (p *puller) Close() error {
	return p.socket.Close()
}
