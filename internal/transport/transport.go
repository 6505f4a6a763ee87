// Package transport defines the push/pull fabric nodes use to exchange
// edges and edge requests, per spec.md §6. The engine talks to the
// Fabric interface only; internal/transport/zmq4transport and
// internal/transport/mangostransport are the two concrete backings,
// mirroring the way the teacher's cluster components talked to their
// storage layer through an interface rather than a concrete map.
// Grounded on original_source/SamSrc/ZeroMQPushPull.hpp: one PUSH
// socket per destination node, one PULL socket per remote node draining
// into a local receive loop, an empty frame as the terminate sentinel.
package transport

import "context"

// Terminate is the empty-payload sentinel a Pusher sends to signal that
// no more data is coming, matching ZeroMQPushPull::terminate's
// emptyZmqMessage convention.
var Terminate = []byte{}

// Config carries the per-socket tuning knobs named in spec.md §6.
type Config struct {
	// HWM is the high-water mark applied to every push socket.
	HWM int
	// SendTimeoutMs bounds how long a blocking send waits before giving
	// up, in milliseconds; 0 or a negative value leaves sends blocking
	// indefinitely.
	SendTimeoutMs int
}

// Fabric is the full push/pull transport a node holds: one Pusher per
// peer node plus a single Puller draining every peer's pushes.
type Fabric interface {
	// Push returns the Pusher connected to the given node index.
	Push(nodeID uint32) (Pusher, error)
	// Pull returns the Puller this node reads incoming frames from.
	Pull() Puller
	// Close tears down every socket owned by the fabric.
	Close() error
}

// Pusher sends length-prefixed frames to a single remote node.
type Pusher interface {
	Send(payload []byte) error
	// Terminate sends the empty-frame sentinel; the socket stays open
	// until the owning Fabric is closed.
	Terminate() error
}

// Puller receives frames pushed by any peer node, including the
// terminate sentinel, which Recv surfaces as an empty payload with
// term true and a nil error rather than as an error.
type Puller interface {
	// Recv blocks until a frame arrives, ctx is canceled, or the puller is
	// closed. term is true when the frame received was the terminate
	// sentinel; payload is empty in that case.
	Recv(ctx context.Context) (payload []byte, term bool, err error)
	Close() error
}

// IsTerminate reports whether payload is the terminate sentinel.
func IsTerminate(payload []byte) bool {
	return len(payload) == 0
}
