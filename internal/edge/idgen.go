package edge

import "sync/atomic"

// IDGenerator hands out monotonic per-node sam ids. Grounded on
// SamSrc/IdGenerator.hpp: a single atomic counter, no persistence across
// restarts (Non-goal), not coordinated with any other node.
type IDGenerator struct {
	next uint64
}

// NewIDGenerator returns a generator whose first id is 0.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next id in sequence. Safe for concurrent use by
// multiple ingress threads.
func (g *IDGenerator) Next() uint64 {
	return atomic.AddUint64(&g.next, 1) - 1
}
