package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterQueryCmdPostsCompiledSpec(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	specFile := filepath.Join(t.TempDir(), "spec.json")
	spec := `{"edges":[{"source":"v1","edge_id":"e1","target":"v2","start_time":{"gte":0,"lte":5}}]}`
	require.NoError(t, os.WriteFile(specFile, []byte(spec), 0o600))

	cmd := registerQueryCmd{Node: srv.Listener.Addr().String(), Name: "watering-hole", File: specFile}
	require.NoError(t, cmd.Run(&globals{}))
	assert.Equal(t, "/queries/watering-hole", gotPath)
}

func TestRegisterQueryCmdRejectsMissingFile(t *testing.T) {
	cmd := registerQueryCmd{Node: "127.0.0.1:1", Name: "x", File: "/nonexistent/spec.json"}
	assert.Error(t, cmd.Run(&globals{}))
}

func TestShowStatsCmdPrintsServerStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			NodeID   int `json:"node_id"`
			CSREdges int `json:"csr_edges"`
			CSCEdges int `json:"csc_edges"`
		}{NodeID: 2, CSREdges: 10, CSCEdges: 10})
	}))
	defer srv.Close()

	cmd := showStatsCmd{Node: srv.Listener.Addr().String()}
	require.NoError(t, cmd.Run(&globals{}))
}
