// Command samctl is the external collaborator for a running samnode
// cluster: it registers subgraph queries and reports cluster-wide
// health and ingest statistics. It never joins the push/pull fabric
// itself — every operation is a plain HTTP request, the same way the
// teacher's cluster package talks to a node over PostJSON/GetJSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dreamware/samgraph/internal/cluster"
	"github.com/dreamware/samgraph/internal/config"
	"github.com/dreamware/samgraph/internal/query"
)

type registerQueryCmd struct {
	Node string `help:"host:port of the samnode to register the query with." required:""`
	Name string `help:"Name the query is registered under." required:""`
	File string `arg:"" help:"Path to a JSON query.Spec file."`
}

func (c *registerQueryCmd) Run(*globals) error {
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("samctl: reading query spec: %w", err)
	}
	var spec query.Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("samctl: parsing query spec: %w", err)
	}
	if _, err := query.Compile(spec); err != nil {
		return fmt.Errorf("samctl: invalid query spec: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("http://%s/queries/%s", c.Node, c.Name)
	if err := cluster.PostJSON(ctx, url, spec, nil); err != nil {
		return fmt.Errorf("samctl: registering query %q on %s: %w", c.Name, c.Node, err)
	}
	fmt.Printf("registered query %q on %s\n", c.Name, c.Node)
	return nil
}

type listNodesCmd struct {
	Config string `help:"Path to the cluster's YAML configuration file." short:"c" required:""`
}

func (c *listNodesCmd) Run(*globals) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("samctl: loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i, host := range cfg.Hostnames {
		addr := fmt.Sprintf("%s:%d", host, cfg.StartingPort+i)
		info := cluster.NodeInfo{ID: fmt.Sprintf("node-%d", i), Addr: addr, Status: "unreachable"}
		if err := cluster.GetJSON(ctx, fmt.Sprintf("http://%s/health", addr), &info); err != nil {
			info.Status = "down (" + err.Error() + ")"
		}
		fmt.Printf("%s\t%s\t%s\n", info.ID, info.Addr, info.Status)
	}
	return nil
}

type showStatsCmd struct {
	Node string `arg:"" help:"host:port of the samnode to query."`
}

func (c *showStatsCmd) Run(*globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stats struct {
		NodeID   int `json:"node_id"`
		CSREdges int `json:"csr_edges"`
		CSCEdges int `json:"csc_edges"`
	}
	url := fmt.Sprintf("http://%s/stats", c.Node)
	if err := cluster.GetJSON(ctx, url, &stats); err != nil {
		return fmt.Errorf("samctl: fetching stats from %s: %w", c.Node, err)
	}
	fmt.Printf("node %d: csr_edges=%d csc_edges=%d\n", stats.NodeID, stats.CSREdges, stats.CSCEdges)
	return nil
}

type globals struct{}

var cli struct {
	RegisterQuery registerQueryCmd `cmd:"" help:"Compile a query.Spec file and register it on a node."`
	ListNodes     listNodesCmd     `cmd:"" help:"Check /health on every node named in a cluster config."`
	ShowStats     showStatsCmd     `cmd:"" help:"Print a node's edge-index counts."`
}

func main() {
	ctx := kong.Parse(&cli, kong.Description("samctl registers queries and inspects a samnode cluster."))
	err := ctx.Run(&globals{})
	ctx.FatalIfErrorf(err)
}
