// Command samnode runs a single worker in a partitioned streaming graph
// engine: it indexes its share of a temporal edge stream, maintains
// per-vertex top-k and running-sum features, advances every registered
// subgraph query, and exchanges edges and edge requests with its peers
// over a push/pull transport fabric. Grounded on the teacher's
// cmd/node, generalized from an HTTP shard worker to a graph-stream
// worker with the same HTTP-plus-signal-driven lifecycle.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dreamware/samgraph/internal/cluster"
	"github.com/dreamware/samgraph/internal/config"
	"github.com/dreamware/samgraph/internal/edge"
	"github.com/dreamware/samgraph/internal/feature"
	"github.com/dreamware/samgraph/internal/graphstore"
	"github.com/dreamware/samgraph/internal/histogram"
	"github.com/dreamware/samgraph/internal/nodelink"
	"github.com/dreamware/samgraph/internal/partition"
	"github.com/dreamware/samgraph/internal/query"
	"github.com/dreamware/samgraph/internal/topk"
	txport "github.com/dreamware/samgraph/internal/transport"
	"github.com/dreamware/samgraph/internal/transport/mangostransport"
	"github.com/dreamware/samgraph/internal/transport/zmq4transport"
)

// cli is parsed by kong; every engine-level setting lives in the config
// file/environment, per spec.md §6 — these flags only locate that
// configuration and the HTTP surface samnode itself stands up.
type cli struct {
	Config string `help:"Path to this node's YAML configuration file." short:"c"`
	Listen string `help:"Address the health/metrics/control HTTP server listens on." default:":9100"`
}

const (
	topKFeatureName   = "top-destinations"
	durationFeature   = "duration-sum"
	topKWindowDivisor = 10 // divides n to give the duration-sum histogram's k
)

func main() {
	var cliArgs cli
	kong.Parse(&cliArgs, kong.Description("samnode runs one worker of a partitioned streaming graph engine."))

	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "samnode: invalid configuration:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogFormat).With().
		Str("component", "samnode").
		Int("node_id", cfg.NodeID).
		Logger()

	if len(cfg.Hostnames) != cfg.NumNodes {
		logger.Fatal().Msg("configuration already validated hostnames count but it no longer matches num-nodes")
	}
	addrFor := func(node uint32) string {
		return fmt.Sprintf("%s:%d", cfg.Hostnames[node], cfg.StartingPort+int(node))
	}

	fabric, err := newFabric(cfg, addrFor)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to construct transport fabric")
	}
	defer fabric.Close()

	p := partition.New(uint32(cfg.NodeID), uint32(cfg.NumNodes))
	sender := &nodelink.Sender{Fabric: fabric}

	store, err := graphstore.New(graphstore.Config{
		GraphCapacity:   cfg.GraphCapacity,
		TimeWindow:      cfg.TimeWindow,
		TableCapacity:   cfg.TableCapacity,
		ResultsCapacity: cfg.ResultsCapacity,
	}, p, sender, sender, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to construct graph store")
	}

	features, err := feature.NewMap(cfg.GraphCapacity)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to construct feature map")
	}
	topKReg := topk.NewRegistry(features, topKFeatureName, cfg.N, cfg.B, cfg.K)
	sumReg := histogram.NewSumRegistry(features, durationFeature, cfg.N, cfg.N/topKWindowDivisor)

	store.Subscribe(func(raw any) {
		e, ok := raw.(edge.Edge)
		if !ok {
			return
		}
		if err := topKReg.Add(e.Source, e.Target); err != nil {
			logger.Warn().Err(err).Str("vertex", e.Source).Msg("top-k registry rejected observation")
		}
		if err := sumReg.Add(e.Source, e.Duration); err != nil {
			logger.Warn().Err(err).Str("vertex", e.Source).Msg("duration-sum registry rejected observation")
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A single goroutine drains the fabric's one pull socket; the
	// num-pull-threads config knob is accepted for forward compatibility
	// with a multi-socket fabric but is not yet honored (see DESIGN.md).
	go store.PullLoop(ctx, fabric.Pull().Recv, nodelink.Decode)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cluster.NodeInfo{
			ID:     fmt.Sprintf("node-%d", cfg.NodeID),
			Addr:   cliArgs.Listen,
			Status: "healthy",
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/queries/", func(w http.ResponseWriter, r *http.Request) {
		handleRegisterQuery(store, features, cfg.ResultsCapacity, w, r)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		handleStats(store, cfg.NodeID, w, r)
	})

	srv := &http.Server{
		Addr:              cliArgs.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cliArgs.Listen).Msg("samnode listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http listen failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
	logger.Info().Msg("samnode stopped")
}

// handleRegisterQuery compiles the posted query.Spec and registers it
// under the name given in the URL path (/queries/{name}).
func handleRegisterQuery(store *graphstore.Store, features *feature.Map, resultsCapacity int, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := r.URL.Path[len("/queries/"):]
	if name == "" {
		http.Error(w, "missing query name", http.StatusBadRequest)
		return
	}

	var spec query.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "malformed query spec: "+err.Error(), http.StatusBadRequest)
		return
	}

	q, err := query.Compile(spec)
	if err != nil {
		http.Error(w, "invalid query: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	store.RegisterQuery(name, q, features.TopKLookup, resultsCapacity)
	w.WriteHeader(http.StatusCreated)
}

// Stats is the JSON body samctl show-stats prints, one per queried node.
type Stats struct {
	NodeID   int `json:"node_id"`
	CSREdges int `json:"csr_edges"`
	CSCEdges int `json:"csc_edges"`
}

func handleStats(store *graphstore.Store, nodeID int, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	csr, csc := store.CountEdges()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Stats{NodeID: nodeID, CSREdges: csr, CSCEdges: csc})
}

// newFabric picks the push/pull backend named by cfg.Transport.
func newFabric(cfg *config.Config, addrFor func(uint32) string) (txport.Fabric, error) {
	tcfg := txport.Config{HWM: cfg.HWM, SendTimeoutMs: cfg.TimeoutMs}
	switch cfg.Transport {
	case "mangos":
		return mangostransport.New(uint32(cfg.NodeID), uint32(cfg.NumNodes), addrFor, tcfg)
	default:
		return zmq4transport.New(uint32(cfg.NodeID), uint32(cfg.NumNodes), addrFor, tcfg)
	}
}

func newLogger(format string) zerolog.Logger {
	if format == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}
