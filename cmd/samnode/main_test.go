package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/feature"
	"github.com/dreamware/samgraph/internal/graphstore"
	"github.com/dreamware/samgraph/internal/partition"
	"github.com/dreamware/samgraph/internal/query"
	"github.com/dreamware/samgraph/internal/request"
)

type stubSender struct{}

func (stubSender) Send(uint32, edge.Edge) error        { return nil }
func (stubSender) SendRequest(uint32, request.Request) error { return nil }

func newTestStore(t *testing.T) *graphstore.Store {
	t.Helper()
	p := partition.New(0, 1)
	store, err := graphstore.New(graphstore.Config{
		GraphCapacity:   64,
		TimeWindow:      60,
		TableCapacity:   64,
		ResultsCapacity: 64,
	}, p, stubSender{}, stubSender{}, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestHandleRegisterQueryAcceptsValidSpec(t *testing.T) {
	store := newTestStore(t)
	features, err := feature.NewMap(16)
	require.NoError(t, err)

	spec := query.Spec{
		Edges: []query.EdgeSpec{
			{Source: "v1", EdgeID: "e1", Target: "v2", StartTime: &query.RangeSpec{Gte: ptr(0.0), Lte: ptr(5.0)}},
		},
	}
	body, err := json.Marshal(spec)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/queries/watering-hole", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handleRegisterQuery(store, features, 64, rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleRegisterQueryRejectsMissingName(t *testing.T) {
	store := newTestStore(t)
	features, err := feature.NewMap(16)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/queries/", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handleRegisterQuery(store, features, 64, rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStatsReportsEdgeCounts(t *testing.T) {
	store := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	handleStats(store, 3, rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.NodeID)
	assert.Equal(t, 0, stats.CSREdges)
	assert.Equal(t, 0, stats.CSCEdges)
}

func ptr(v float64) *float64 { return &v }
