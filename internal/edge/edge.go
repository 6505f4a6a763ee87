// Package edge defines the typed directed edge that flows through every
// component of the graph engine: ingress, the partitioner, the CSR/CSC
// index, the subgraph query engine, and the edge-request protocol.
package edge

import "fmt"

// Field is an open, typed user field carried alongside the core edge
// attributes. The engine treats these as opaque payload — only the
// producer and any feature reducers interpret them.
type Field struct {
	Value any
}

// Edge is an immutable directed edge between two vertices, timestamped and
// durational. SamID is assigned locally on arrival and is never portable
// across nodes (see the Glossary's "Sam id").
type Edge struct {
	Fields    map[string]Field
	Source    string
	Target    string
	StartTime float64
	Duration  float64
	SamID     uint64
}

// EndTime is the edge's start time plus its duration.
func (e Edge) EndTime() float64 {
	return e.StartTime + e.Duration
}

// Fingerprint identifies an edge by its physical identity — source,
// target, start time, and duration — independent of the locally assigned
// SamID. Partial matches use this for per-match deduplication (§4.3).
type Fingerprint struct {
	Source    string
	Target    string
	StartTime float64
	Duration  float64
}

// Fingerprint computes e's deduplication fingerprint.
func (e Edge) Fingerprint() Fingerprint {
	return Fingerprint{Source: e.Source, Target: e.Target, StartTime: e.StartTime, Duration: e.Duration}
}

// WithSamID returns a copy of e with SamID replaced. Used by the graph
// store and pull threads to stamp a locally generated id on arrival,
// and by edge-receivers to strip the wire-assigned id from a peer.
func (e Edge) WithSamID(id uint64) Edge {
	e.SamID = id
	return e
}

func (e Edge) String() string {
	return fmt.Sprintf("Edge{sam=%d, %s->%s, t=[%g,%g)}", e.SamID, e.Source, e.Target, e.StartTime, e.EndTime())
}
