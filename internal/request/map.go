package request

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/hashing"
)

// Sender delivers a matched edge to a remote node. The graph store wires
// this to the transport fabric (internal/transport); the request map
// itself knows nothing about sockets.
type Sender interface {
	Send(nodeID uint32, e edge.Edge) error
}

// PartitionFunc reports which node owns a vertex, used to skip
// forwarding an edge to a node that would already have indexed it
// locally — mirroring EdgeRequestMap's "TODO: Partition info" checks
// against sourceHash/targetHash % numNodes.
type PartitionFunc func(vertex string) uint32

type reqBucket struct {
	mu       sync.Mutex
	requests []Request
}

// Map is the fixed-capacity, per-slot-mutex table of outstanding edge
// requests described in spec.md §4.4.
type Map struct {
	slots     []reqBucket
	capacity  int
	numNodes  int
	partition PartitionFunc
	sender    Sender

	pushed int64
	failed int64
}

// New constructs a Map. capacity is the number of hash slots; numNodes
// is the size of the cluster (used for the partition-ownership skip);
// partition resolves a vertex to its owning node; sender delivers
// matched edges.
func New(capacity, numNodes int, partition PartitionFunc, sender Sender) (*Map, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("request: capacity must be positive, got %d", capacity)
	}
	return &Map{
		slots:     make([]reqBucket, capacity),
		capacity:  capacity,
		numNodes:  numNodes,
		partition: partition,
		sender:    sender,
	}, nil
}

// AddRequest files r into the slot determined by whichever of
// Source/Target it constrains, per EdgeRequestMap::addRequest's
// three-way branch: target hash alone, source hash alone, or the
// combined hash when both are bound.
func (m *Map) AddRequest(r Request) error {
	idx, err := m.slotFor(r.Source, r.HasSource(), r.Target, r.HasTarget())
	if err != nil {
		return err
	}
	b := &m.slots[idx]
	b.mu.Lock()
	b.requests = append(b.requests, r)
	b.mu.Unlock()
	return nil
}

func (m *Map) slotFor(source string, hasSource bool, target string, hasTarget bool) (int, error) {
	switch {
	case hasSource && hasTarget:
		return hashing.Slot(hashing.Combine(hashing.String(source), hashing.String(target)), m.capacity), nil
	case hasSource:
		return hashing.Slot(hashing.String(source), m.capacity), nil
	case hasTarget:
		return hashing.Slot(hashing.String(target), m.capacity), nil
	default:
		return 0, fmt.Errorf("request: cannot add a request with neither source nor target set")
	}
}

// Process checks e against the three buckets it could satisfy a request
// from (source-only, target-only, both-bound) and forwards e to every
// distinct return node whose request matches, skipping a node that
// would already own e's edge locally. Expired requests encountered along
// the way are evicted. Returns the number of outstanding requests
// examined, for metrics parity with EdgeRequestMap::process.
func (m *Map) Process(e edge.Edge) int {
	sent := make(map[uint32]bool, m.numNodes)

	total := 0
	total += m.processSlot(e, hashing.Slot(hashing.String(e.Source), m.capacity), sourceOnlyMatch, sent)
	total += m.processSlot(e, hashing.Slot(hashing.String(e.Target), m.capacity), targetOnlyMatch, sent)
	total += m.processSlot(e, hashing.Slot(hashing.Combine(hashing.String(e.Source), hashing.String(e.Target)), m.capacity), bothMatch, sent)
	return total
}

type matchFunc func(r Request, e edge.Edge) bool

func sourceOnlyMatch(r Request, e edge.Edge) bool {
	return r.HasSource() && r.Source == e.Source
}

func targetOnlyMatch(r Request, e edge.Edge) bool {
	return r.HasTarget() && r.Target == e.Target
}

func bothMatch(r Request, e edge.Edge) bool {
	return r.HasSource() && r.HasTarget() && r.Source == e.Source && r.Target == e.Target
}

func (m *Map) processSlot(e edge.Edge, idx int, match matchFunc, sent map[uint32]bool) int {
	b := &m.slots[idx]
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	kept := b.requests[:0:0]
	for _, r := range b.requests {
		if r.IsExpired(e.StartTime) {
			continue
		}
		kept = append(kept, r)
		count++

		if !match(r, e) {
			continue
		}
		if m.ownsLocally(r, e) {
			continue
		}
		if sent[r.ReturnNode] {
			continue
		}

		if err := m.sender.Send(r.ReturnNode, e); err != nil {
			atomic.AddInt64(&m.failed, 1)
			continue
		}
		sent[r.ReturnNode] = true
		atomic.AddInt64(&m.pushed, 1)
	}
	b.requests = kept
	return count
}

// ownsLocally reports whether r's return node already owns e's source or
// target by partition, in which case forwarding would be redundant.
func (m *Map) ownsLocally(r Request, e edge.Edge) bool {
	if m.partition == nil || m.numNodes == 0 {
		return false
	}
	return m.partition(e.Source) == r.ReturnNode || m.partition(e.Target) == r.ReturnNode
}

// TotalPushed returns how many edges have been successfully forwarded.
func (m *Map) TotalPushed() int64 {
	return atomic.LoadInt64(&m.pushed)
}

// TotalFailed returns how many forwarding attempts failed.
func (m *Map) TotalFailed() int64 {
	return atomic.LoadInt64(&m.failed)
}
