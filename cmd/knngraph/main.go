// Command knngraph builds approximate k-nearest-neighbor graphs and
// measures their recall against exact search.
//
//	knngraph build -i points.parquet -o graph.parquet.zst --metric euclidean -k 15
//	knngraph recall -i s3://bucket/points.arrow --data-use 0.2
//	knngraph metrics
//
// Settings come from defaults, an optional YAML file (--config), a .env
// file, KNNGRAPH_* environment variables and flags, in increasing
// precedence.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hupe1980/knngraph"
	"github.com/hupe1980/knngraph/prommetrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	envFile    string

	cfg       Config
	runID     string
	logger    *knngraph.Logger
	collector knngraph.MetricsCollector
	server    *metricsServer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "knngraph",
		Short:         "Approximate k-nearest-neighbor graphs",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before KNNGRAPH_* variables")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	root.AddCommand(newBuildCmd(a), newRecallCmd(a), newMetricsCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.runID = uuid.NewString()

	level, err := cfg.level()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	}
	a.logger = knngraph.NewLogger(handler.WithAttrs([]slog.Attr{slog.String("run_id", a.runID)}))

	a.collector = knngraph.NoopMetricsCollector{}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.collector = prommetrics.New(reg)

		srv, err := startMetricsServer(cfg.MetricsAddr, reg)
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		a.server = srv
		a.logger.Info("serving metrics", "addr", srv.Addr())
	}
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// transformer creates a Transformer from the loaded configuration.
func (a *app) transformer() (*knngraph.Transformer, error) {
	opts := append(a.cfg.Options(),
		knngraph.WithLogger(a.logger),
		knngraph.WithMetricsCollector(a.collector),
	)
	return knngraph.New(opts...)
}

func addTransformerFlags(cmd *cobra.Command) {
	d := DefaultConfig()
	f := cmd.Flags()
	f.StringP("input", "i", "", "input dataset (.parquet, .arrow, .csv, .txt; optional .zst/.lz4)")
	f.IntP("neighbors", "k", d.Neighbors, "neighbors per point, self excluded")
	f.String("metric", d.Metric, "distance metric (see 'knngraph metrics')")
	f.String("method", d.Method, "index method (hnsw, sw-graph, brute_force, simple_invindx, vp-tree)")
	f.IntP("jobs", "j", d.Jobs, "worker threads, -1 for all CPUs")
	f.Int("m", d.M, "graph out-degree")
	f.Int("ef-construction", d.EfConstruction, "candidate list size while indexing")
	f.Int("ef-search", d.EfSearch, "candidate list size while querying")
	f.Int("post", d.Post, "post-processing level (0-2)")
	f.Float64("p", d.P, "exponent of the lp metric")
	f.Bool("dense", d.Dense, "convert sparse input to dense")
	f.Int("bucket-size", d.BucketSize, "vp-tree leaf bucket size, 0 for the default")
	f.Int64("seed", d.Seed, "random seed")
}
