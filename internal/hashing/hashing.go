// Package hashing centralizes the hot-path hash functions used to place
// edges and keys into fixed-capacity slotted tables across the engine:
// the feature map (§4.1), CSR/CSC (§4.6), the result map (§4.3), and the
// edge-request map (§4.4). Grounded on grafana-tempo's use of
// cespare/xxhash for ring/shard hashing — xxhash replaces the teacher's
// hash/fnv on every hot path; hash/fnv is kept only for the partitioner's
// cold-path node assignment (internal/partition), matching the teacher's
// own fnv-based shard.OwnsKey.
package hashing

import "github.com/cespare/xxhash/v2"

// String hashes s to a 64-bit value.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Combine mixes two hashes, used for the "both endpoints bound" slot
// index formula in §4.3/§4.4: hash(source)*hash(target) mod T.
func Combine(a, b uint64) uint64 {
	return a * b
}

// Slot reduces h into [0, size) for a table of the given size. size must
// be > 0; callers validate capacity at construction time.
func Slot(h uint64, size int) int {
	return int(h % uint64(size))
}
