// Package cluster provides the HTTP/JSON plumbing samnode and samctl use
// to talk to each other: a shared client with PostJSON/GetJSON helpers,
// and the NodeInfo type both sides encode a node's identity and health
// into.
//
// # Overview
//
// There is no central coordinator in this architecture (spec.md's
// partitioning is static, fixed at cluster-configuration time by
// internal/config and internal/partition) so cluster does not manage
// membership or reassign work. It is the wire-level convention two
// peers share: samctl posts a compiled query.Spec to a samnode's
// /queries/{name} endpoint, and polls a samnode's /health and /stats
// endpoints to report liveness and edge counts.
//
// # Core Types
//
// NodeInfo: identifies a node and reports its health.
//   - ID, Addr: identity and reachable address
//   - Status: "healthy" once a /health probe succeeds, or the error
//     text samctl substitutes when it doesn't
//
// # Communication Protocol
//
// Query registration (POST /queries/{name}):
//   - samctl posts a compiled query.Spec as the request body
//   - the samnode compiles and registers it against its local graph store
//
// Health checking (GET /health):
//   - samctl polls each configured node's /health endpoint
//   - a samnode replies with its own NodeInfo, Status "healthy"
//
// Stats (GET /stats):
//   - samctl polls a samnode's /stats endpoint for CSR/CSC edge counts
//
// # Concurrency Model
//
// PostJSON and GetJSON are safe for concurrent use; they share one
// *http.Client so connections pool across calls.
//
// # Testing
//
// Run tests with:
//
//	go test ./internal/cluster/... -cover
//
// # See Also
//
// Related packages:
//   - internal/partition: vertex-to-node placement, the consistent-hash
//     successor to this cluster's original shard assignment
//   - internal/graphstore: the per-node engine state that PostJSON and
//     GetJSON ultimately register queries against and report stats for
package cluster
