package knngraph

import (
	"context"
	"time"

	"github.com/hupe1980/knngraph/dataset"
	"github.com/hupe1980/knngraph/gradient"
	"github.com/hupe1980/knngraph/graph"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/vector"
)

// QueryOptions selects the optional outputs of Query.
type QueryOptions struct {
	// ReturnGraph populates Result.Graph.
	ReturnGraph bool

	// ReturnGradient populates Result.Gradient.
	ReturnGradient bool
}

// Result holds the neighbors of every query row.
type Result struct {
	// Indices and Distances hold k+1 entries per row, the query point
	// itself included when it was part of the fitted data.
	Indices   [][]uint32
	Distances [][]float32

	// Gradient holds one edge per non-zero graph entry, ordered by row
	// then column. Nil unless requested and defined for the metric.
	Gradient []gradient.Edge

	// Graph is the neighbor graph. Nil unless requested.
	Graph *graph.CSR
}

// Transform returns the neighbor graph of in against the fitted data.
// Row i holds the k+1 nearest fitted points of query i.
func (t *Transformer) Transform(ctx context.Context, in any) (*graph.CSR, error) {
	_, res, cols, err := t.kneighbors(ctx, in)
	if err != nil {
		return nil, err
	}
	g, err := graph.FromNeighbors(res, cols)
	if err != nil {
		return nil, &QueryError{Row: -1, cause: err}
	}
	return g, nil
}

// FitTransform fits in and returns its neighbor graph.
func (t *Transformer) FitTransform(ctx context.Context, in any) (*graph.CSR, error) {
	if _, err := t.Fit(ctx, in); err != nil {
		return nil, err
	}
	return t.Transform(ctx, in)
}

// Query returns neighbor indices and distances for in, plus the graph and
// the per-edge gradients when requested.
func (t *Transformer) Query(ctx context.Context, in any, opts QueryOptions) (*Result, error) {
	queries, res, cols, err := t.kneighbors(ctx, in)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Indices:   make([][]uint32, len(res)),
		Distances: make([][]float32, len(res)),
	}
	for i, r := range res {
		out.Indices[i] = r.IDs()
		out.Distances[i] = r.Distances()
	}
	if !opts.ReturnGraph && !opts.ReturnGradient {
		return out, nil
	}

	g, err := graph.Assemble(out.Indices, out.Distances, cols)
	if err != nil {
		return nil, &QueryError{Row: -1, cause: err}
	}
	if opts.ReturnGraph {
		out.Graph = g
	}
	if opts.ReturnGradient {
		if !gradient.Supported(t.metric) {
			t.logger.WarnContext(ctx, "gradient not defined for metric, skipping", "metric", t.metric)
		} else {
			t.mu.Lock()
			fitted := t.fitted
			t.mu.Unlock()
			out.Gradient = gradient.Compute(g.Find(), queries, fitted, t.metric)
		}
	}
	return out, nil
}

// kneighbors runs the k+1 nearest neighbor query for in and returns the
// prepared queries, the results and the number of fitted points.
func (t *Transformer) kneighbors(ctx context.Context, in any) (*vector.Set, []index.Neighbors, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.index == nil {
		return nil, nil, 0, ErrNotFitted
	}

	queries, _, err := t.prepare(ctx, in)
	if err != nil {
		return nil, nil, 0, translateError(err)
	}
	if queries, err = dataset.Conform(queries, t.fitted); err != nil {
		return nil, nil, 0, translateError(err)
	}

	// Each fitted point is its own nearest neighbor, so one extra
	// neighbor is requested. t.k itself is left untouched.
	k := t.k + 1
	threads := t.threads()
	logger := t.logger.WithK(k)
	logger.DebugContext(ctx, "query-time parameters", "efSearch", t.opts.efSearch)

	start := time.Now()
	res, err := t.index.KNNQueryBatch(ctx, queries, k, index.QueryParams{EfSearch: t.opts.efSearch}, threads)
	elapsed := time.Since(start)
	t.opts.metricsCollector.RecordQuery(queries.Len(), k, elapsed, err)
	logger.LogQuery(ctx, queries.Len(), threads, elapsed, err)
	if err != nil {
		return nil, nil, 0, translateError(err)
	}

	if t.metric.Squared() {
		for _, r := range res {
			for j := range r {
				r[j].Distance *= r[j].Distance
			}
		}
	}
	return queries, res, t.index.Len(), nil
}
