package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/hupe1980/knngraph"
	"github.com/hupe1980/knngraph/codec"
	"github.com/hupe1980/knngraph/dataset"
	"github.com/hupe1980/knngraph/dataset/loader"
	"github.com/hupe1980/knngraph/metric"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrMissingOutput is returned by build without an output location.
var ErrMissingOutput = errors.New("output cannot be empty")

func (a *app) load(ctx context.Context) (dataset.Input, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	store, name, err := openStore(ctx, a.cfg, a.cfg.Input)
	if err != nil {
		return nil, err
	}
	in, err := loader.Load(ctx, store, name)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "loaded dataset", "input", a.cfg.Input, "samples", in.Len())
	return in, nil
}

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the kNN graph of a dataset and write it out",
		Long: `Build fits an index over the input, queries every point against it and
writes the resulting sparse graph. Row i holds the k+1 nearest points of
point i, the point itself included.

The output format follows the extension: .parquet (edge list), .json
(CSR arrays) or .mtx (Matrix Market), optionally with .zst or .lz4.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.cfg.Output == "" {
				return ErrMissingOutput
			}
			c, ok := codec.ByName(a.cfg.Codec)
			if !ok {
				return fmt.Errorf("unknown codec %q", a.cfg.Codec)
			}

			in, err := a.load(ctx)
			if err != nil {
				return err
			}
			t, err := a.transformer()
			if err != nil {
				return err
			}
			g, err := t.FitTransform(ctx, in)
			if err != nil {
				return err
			}

			store, name, err := openStore(ctx, a.cfg, a.cfg.Output)
			if err != nil {
				return err
			}
			if err := writeGraph(ctx, store, name, g, c); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %dx%d, %d edges\n", a.cfg.Output, g.Rows, g.Cols, g.NNZ())
			return err
		},
	}
	addTransformerFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output graph (.parquet, .json, .mtx; optional .zst/.lz4)")
	cmd.Flags().String("codec", DefaultConfig().Codec, "JSON codec (json, go-json)")
	return cmd
}

// recallSummary is the printed result of the recall command.
type recallSummary struct {
	RunID      string  `yaml:"run_id"`
	Input      string  `yaml:"input"`
	Method     string  `yaml:"method"`
	Metric     string  `yaml:"metric"`
	Neighbors  int     `yaml:"neighbors"`
	Recall     float64 `yaml:"recall"`
	Queries    int     `yaml:"queries"`
	SampleSize int     `yaml:"sample_size"`
	ANNTime    string  `yaml:"ann_time"`
	SampleTime string  `yaml:"sample_time"`
	ExactTime  string  `yaml:"exact_time"`
}

func newRecallCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Compare approximate neighbors against exact search",
		Long: `Recall fits an index over the input, then queries every point against
the index and against exact brute-force search. It prints the mean
per-point recall as YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			in, err := a.load(ctx)
			if err != nil {
				return err
			}
			t, err := a.transformer()
			if err != nil {
				return err
			}
			if _, err := t.Fit(ctx, in); err != nil {
				return err
			}
			report, err := t.TestEfficiency(ctx, in, a.cfg.DataUse)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(recallSummary{
				RunID:      a.runID,
				Input:      a.cfg.Input,
				Method:     a.cfg.Method,
				Metric:     a.cfg.Metric,
				Neighbors:  a.cfg.Neighbors,
				Recall:     report.Recall,
				Queries:    report.Queries,
				SampleSize: report.SampleSize,
				ANNTime:    report.ANNTime.String(),
				SampleTime: report.SampleTime.String(),
				ExactTime:  report.ExactTime.String(),
			})
		},
	}
	addTransformerFlags(cmd)
	cmd.Flags().Float64("data-use", knngraph.DefaultDataUse, "fraction of points timed separately")
	return cmd
}

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the supported distance metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METRIC\tINPUT\tGRADIENT")
			for _, m := range metric.All() {
				input := "numeric"
				if m.IsString() {
					input = "strings"
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\n", m, input, m.HasGradient())
			}
			return tw.Flush()
		},
	}
}
