// Package graphstore wires together every per-node component named in
// spec.md §2's control flow: ingress hands an edge to Consume, which
// inserts it into the CSR/CSC index, fans it out to local feature
// operators, advances every registered query's result map, satisfies any
// outstanding edge requests aimed at this edge, and forwards new edge
// requests to whichever remote node owns the vertex a partial match
// still needs. Grounded on original_source/SamSrc/ZeroMQPushPull.hpp's
// consume/parallelFeed control flow; PullLoop's context-cancellation
// exit follows the teacher's graceful-shutdown idiom used throughout
// cmd/samnode.
package graphstore

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/feed"
	"github.com/dreamware/samgraph/internal/graphidx"
	"github.com/dreamware/samgraph/internal/match"
	"github.com/dreamware/samgraph/internal/partition"
	"github.com/dreamware/samgraph/internal/query"
	"github.com/dreamware/samgraph/internal/request"
	"github.com/dreamware/samgraph/internal/telemetry"
)

// RequestSender dispatches a not-yet-local edge request to whichever
// node owns the vertex it names, the control-plane counterpart of
// request.Sender (which dispatches the matching edge itself).
type RequestSender interface {
	SendRequest(nodeID uint32, r request.Request) error
}

// registeredQuery pairs a finalized query with the sharded result map
// advancing its partial matches.
type registeredQuery struct {
	name    string
	query   *query.Query
	results *match.ResultMap
}

// Store is a single node's complete local graph engine state.
type Store struct {
	mu sync.RWMutex // Protects queries during registration

	csr *graphidx.Index
	csc *graphidx.Index

	partitioner *partition.Partitioner
	reqMap      *request.Map
	reqSender   RequestSender
	feed        *feed.Feed

	queries map[string]*registeredQuery

	idGen *edge.IDGenerator

	logger zerolog.Logger
}

// Config bundles the fixed-size limits every internal table is built
// with, per spec.md §6.
type Config struct {
	GraphCapacity   int
	TimeWindow      float64
	TableCapacity   int
	ResultsCapacity int
}

// New constructs a Store for one node. reqSender delivers edge requests
// this node issues to the remote node that should satisfy them; the
// request.Sender half (delivering matched edges back) is supplied
// separately when the Store builds its internal request.Map.
func New(cfg Config, p *partition.Partitioner, sender request.Sender, reqSender RequestSender, logger zerolog.Logger) (*Store, error) {
	pf := p.Func()
	reqMap, err := request.New(cfg.TableCapacity, int(p.NumNodes()), request.PartitionFunc(pf), sender)
	if err != nil {
		return nil, err
	}

	return &Store{
		csr:         graphidx.NewCSR(cfg.GraphCapacity, cfg.TimeWindow),
		csc:         graphidx.NewCSC(cfg.GraphCapacity, cfg.TimeWindow),
		partitioner: p,
		reqMap:      reqMap,
		reqSender:   reqSender,
		feed:        feed.New(),
		queries:     make(map[string]*registeredQuery),
		idGen:       edge.NewIDGenerator(),
		logger:      logger.With().Str("component", "graphstore").Logger(),
	}, nil
}

// RegisterQuery adds a subgraph query this node actively matches edges
// against. lookup resolves vertex-constraint top-k membership. Every
// match left waiting on a vertex this node does not own has its
// NextRequest forwarded to the owning node automatically.
func (s *Store) RegisterQuery(name string, q *query.Query, lookup query.FeatureLookup, resultsCapacity int) {
	results := match.NewResultMap(q, lookup, s.csr, s.csc, resultsCapacity, resultsCapacity)
	results.SetOnWaiting(func(pm *match.PartialMatch) {
		s.forwardRequest(name, pm)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[name] = &registeredQuery{
		name:    name,
		query:   q,
		results: results,
	}
}

// forwardRequest asks pm whether it needs a remote vertex's edges next
// and, if so, sends the resulting request to whichever node owns that
// vertex.
func (s *Store) forwardRequest(queryName string, pm *match.PartialMatch) {
	r, ok := pm.NextRequest(s.partitioner.Owns, s.partitioner.LocalNode())
	if !ok {
		return
	}

	var vertex string
	if r.HasSource() {
		vertex = r.Source
	} else {
		vertex = r.Target
	}
	owner := s.partitioner.NodeFor(vertex)

	if err := s.reqSender.SendRequest(owner, r); err != nil {
		s.logger.Warn().Err(err).Str("query", queryName).Str("vertex", vertex).Msg("failed to forward edge request")
	}
}

// Subscribe registers a local feature operator (top-k sketch,
// exponential-histogram registry) to see every consumed edge.
func (s *Store) Subscribe(sub feed.Subscriber) {
	s.feed.Subscribe(sub)
}

// NextSamID stamps a locally originated edge with this node's next
// monotonic sam id.
func (s *Store) NextSamID() uint64 {
	return s.idGen.Next()
}

// Consume runs the full per-edge pipeline described in spec.md §2:
// index, fan out to local operators, advance every registered query,
// satisfy outstanding edge requests, and issue new edge requests for any
// partial match that now needs a vertex owned elsewhere.
func (s *Store) Consume(e edge.Edge) {
	s.csr.AddEdge(e)
	s.csc.AddEdge(e)
	telemetry.GraphIndexEdgeCount.WithLabelValues("csr").Set(float64(s.csr.CountEdges()))
	telemetry.GraphIndexEdgeCount.WithLabelValues("csc").Set(float64(s.csc.CountEdges()))

	s.feed.Publish(e)

	s.reqMap.Process(e)

	now := s.csr.CurrentTime()
	s.mu.RLock()
	queries := make([]*registeredQuery, 0, len(s.queries))
	for _, rq := range s.queries {
		queries = append(queries, rq)
	}
	s.mu.RUnlock()

	for _, rq := range queries {
		completed := rq.results.Process(e, now)
		if len(completed) > 0 {
			telemetry.ResultMapCompletions.WithLabelValues(rq.name).Add(float64(len(completed)))
		}
	}
}

// Drain returns every subgraph query result completed since the last
// call, keyed by query name.
func (s *Store) Drain() map[string][][]edge.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][][]edge.Edge, len(s.queries))
	for name, rq := range s.queries {
		if drained := rq.results.Drain(); len(drained) > 0 {
			out[name] = drained
		}
	}
	return out
}

// Frame is a decoded remote pull-socket payload: either an edge to
// consume, or an edge request another node filed against this one. The
// two share a single transport fabric per node, so a wire-level glue
// package distinguishes them before handing a Frame to PullLoop.
type Frame struct {
	Edge      edge.Edge
	Request   request.Request
	IsRequest bool
}

// HandleRequest files a request another node filed against this node's
// edges, so it is satisfied as matching edges are consumed.
func (s *Store) HandleRequest(r request.Request) error {
	return s.reqMap.AddRequest(r)
}

// PullLoop reads incoming frames from recv until ctx is canceled or a
// terminate sentinel arrives, decoding each with decode and routing it
// to Consume (edge frames) or HandleRequest (request frames). Mirrors
// ZeroMQPushPull's pullThread.
func (s *Store) PullLoop(ctx context.Context, recv func(context.Context) ([]byte, bool, error), decode func([]byte) (Frame, error)) {
	for {
		payload, term, err := recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("pull loop receive failed")
			continue
		}
		if term {
			return
		}
		f, err := decode(payload)
		if err != nil {
			s.logger.Warn().Err(err).Msg("dropping malformed frame on pull")
			continue
		}
		if f.IsRequest {
			if err := s.HandleRequest(f.Request); err != nil {
				s.logger.Warn().Err(err).Msg("failed to file incoming edge request")
			}
			continue
		}
		s.Consume(f.Edge)
	}
}

// CountEdges returns the CSR and CSC edge counts, which invariant 4
// requires always agree.
func (s *Store) CountEdges() (csr, csc int) {
	return s.csr.CountEdges(), s.csc.CountEdges()
}
