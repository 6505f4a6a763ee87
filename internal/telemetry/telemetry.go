// Package telemetry exposes the prometheus counters and histograms
// named throughout spec.md §4: edge-request send/fail/latency (§4.4),
// feature-map occupancy (§4.1), CSR/CSC edge counts (invariant 4's
// cross-check), result-map completions, and partial-match expiry.
// Grounded on grafana-tempo's friggdb package-level promauto.New*
// convention.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "samgraph"

var (
	// EdgeRequestsSent counts edges successfully forwarded to a remote
	// node in response to an outstanding edge request.
	EdgeRequestsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edge_requests_sent_total",
		Help:      "Total number of edges forwarded in response to an outstanding edge request.",
	}, []string{"node_id"})

	// EdgeRequestsFailed counts failed forwarding attempts.
	EdgeRequestsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edge_requests_failed_total",
		Help:      "Total number of edge-request forwarding attempts that failed.",
	}, []string{"node_id"})

	// EdgeRequestLatency records the time from request filing to its
	// satisfying edge being forwarded.
	EdgeRequestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "edge_request_latency_seconds",
		Help:      "Time between an edge request being filed and its matching edge being forwarded.",
		Buckets:   prometheus.ExponentialBuckets(.001, 2, 12),
	})

	// FeatureMapOccupancy gauges how many slots of a feature map are
	// currently occupied, by map name.
	FeatureMapOccupancy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feature_map_occupancy",
		Help:      "Number of occupied slots in a feature map.",
	}, []string{"map"})

	// GraphIndexEdgeCount gauges the total edges held by a CSR or CSC
	// index, used to cross-check invariant 4 (CSR and CSC edge counts
	// must always agree).
	GraphIndexEdgeCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_index_edge_count",
		Help:      "Number of edges currently held by a CSR or CSC index.",
	}, []string{"direction"})

	// ResultMapCompletions counts subgraph query matches completed, by
	// query name.
	ResultMapCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "result_map_completions_total",
		Help:      "Total number of subgraph query matches completed.",
	}, []string{"query"})

	// PartialMatchExpirations counts partial matches dropped for aging
	// out before completion, by query name.
	PartialMatchExpirations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partial_match_expirations_total",
		Help:      "Total number of partial matches dropped for exceeding their query's maximum time extent.",
	}, []string{"query"})
)
