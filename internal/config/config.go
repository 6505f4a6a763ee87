// Package config binds the node configuration table from spec.md §6 to
// a struct using spf13/viper, the way grafana-tempo's cmd/tempo-query
// loads its plugin config: AutomaticEnv with a SAM_-prefixed, "-"→"_"
// key replacer, optionally overlaid with a YAML file.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is every configuration option named in spec.md §6.
type Config struct {
	NumNodes     int      `mapstructure:"num-nodes"`
	NodeID       int      `mapstructure:"node-id"`
	Hostnames    []string `mapstructure:"hostnames"`
	StartingPort int      `mapstructure:"starting-port"`

	HWM             int     `mapstructure:"hwm"`
	QueueLength     int     `mapstructure:"queue-length"`
	GraphCapacity   int     `mapstructure:"graph-capacity"`
	TableCapacity   int     `mapstructure:"table-capacity"`
	ResultsCapacity int     `mapstructure:"results-capacity"`
	TimeWindow      float64 `mapstructure:"time-window"`
	QueryTimeWindow float64 `mapstructure:"query-time-window"`
	NumPushSockets  int     `mapstructure:"num-push-sockets"`
	NumPullThreads  int     `mapstructure:"num-pull-threads"`
	TimeoutMs       int     `mapstructure:"timeout"`

	N int `mapstructure:"n"`
	B int `mapstructure:"b"`
	K int `mapstructure:"k"`

	LogFormat string `mapstructure:"log-format"`

	// Transport selects the push/pull backend: "zmq4" (default, requires
	// cgo) or "mangos" (pure Go, for builds/tests that cannot carry zmq4).
	Transport string `mapstructure:"transport"`
}

// Load builds a viper instance bound to the SAM_ environment prefix,
// optionally overlaid with the YAML file at path (ignored if empty),
// and unmarshals it into a Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("sam")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: reading config file %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshaling configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config: invalid configuration")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("starting-port", 9999)
	v.SetDefault("hwm", 1000)
	v.SetDefault("queue-length", 1000)
	v.SetDefault("graph-capacity", 100000)
	v.SetDefault("table-capacity", 100000)
	v.SetDefault("results-capacity", 10000)
	v.SetDefault("time-window", 60.0)
	v.SetDefault("query-time-window", 60.0)
	v.SetDefault("num-push-sockets", 1)
	v.SetDefault("num-pull-threads", 1)
	v.SetDefault("timeout", 1000)
	v.SetDefault("n", 10000)
	v.SetDefault("b", 10)
	v.SetDefault("k", 100)
	v.SetDefault("log-format", "console")
	v.SetDefault("transport", "zmq4")
}

// Validate checks the invariants a node refuses to start without:
// a positive node count, a node id within range, one hostname per node,
// and a top-k window shape (n, b) with at least one dormant block.
func (c *Config) Validate() error {
	if c.NumNodes <= 0 {
		return errors.New("num-nodes must be positive")
	}
	if c.NodeID < 0 || c.NodeID >= c.NumNodes {
		return errors.Errorf("node-id %d out of range [0, %d)", c.NodeID, c.NumNodes)
	}
	if len(c.Hostnames) != c.NumNodes {
		return errors.Errorf("expected %d hostnames, got %d", c.NumNodes, len(c.Hostnames))
	}
	if c.B <= 0 {
		return errors.New("b must be positive")
	}
	if c.N/c.B <= 1 {
		return errors.New("n/b must leave at least one dormant block")
	}
	if c.K <= 0 {
		return errors.New("k must be positive")
	}
	if c.Transport != "zmq4" && c.Transport != "mangos" {
		return errors.Errorf("transport must be \"zmq4\" or \"mangos\", got %q", c.Transport)
	}
	return nil
}
