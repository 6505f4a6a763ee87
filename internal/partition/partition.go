// Package partition assigns vertices to owning nodes by consistent
// hashing, the same FNV-1a scheme the teacher's key-to-shard placement
// used, generalized here to the graph engine's vertex-to-node placement
// (spec.md §4/§9's partitioning Open Question).
// Every other component that needs "does node N own vertex V" —
// internal/request.Map, internal/match.PartialMatch.NextRequest, the
// graph store's local-index selection — takes a partition.Func rather
// than rolling its own hash, so the placement rule stays in one place.
package partition

import "hash/fnv"

// Func resolves a vertex to the index of the node that owns it.
type Func func(vertex string) uint32

// Partitioner assigns vertices to one of NumNodes nodes by FNV-1a hash,
// and reports whether the local node owns a given vertex.
type Partitioner struct {
	localNode uint32
	numNodes  uint32
}

// New constructs a Partitioner for a cluster of numNodes nodes, where
// localNode is this node's own index in [0, numNodes).
func New(localNode, numNodes uint32) *Partitioner {
	return &Partitioner{localNode: localNode, numNodes: numNodes}
}

// NodeFor returns the index of the node that owns vertex, mirroring
// Shard.OwnsKey's hash/modulo scheme.
func (p *Partitioner) NodeFor(vertex string) uint32 {
	if p.numNodes == 0 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(vertex))
	return h.Sum32() % p.numNodes
}

// Owns reports whether the local node owns vertex.
func (p *Partitioner) Owns(vertex string) bool {
	return p.NodeFor(vertex) == p.localNode
}

// Func returns p.NodeFor as a partition.Func, for wiring into
// internal/request.Map.
func (p *Partitioner) Func() Func {
	return p.NodeFor
}

// LocalNode returns this partitioner's own node index.
func (p *Partitioner) LocalNode() uint32 {
	return p.localNode
}

// NumNodes returns the cluster size this partitioner was built for.
func (p *Partitioner) NumNodes() uint32 {
	return p.numNodes
}
