package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEdgeRequestsSentIncrements(t *testing.T) {
	EdgeRequestsSent.WithLabelValues("node-1").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(EdgeRequestsSent.WithLabelValues("node-1")), float64(1))
}

func TestGraphIndexEdgeCountSetsGauge(t *testing.T) {
	GraphIndexEdgeCount.WithLabelValues("csr").Set(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(GraphIndexEdgeCount.WithLabelValues("csr")))
}
