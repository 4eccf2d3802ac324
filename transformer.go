package knngraph

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hupe1980/knngraph/dataset"
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/metric"
	"github.com/hupe1980/knngraph/vector"
)

// Transformer builds an approximate kNN graph over a dataset.
//
// Fit builds the index once; Transform, Query and TestEfficiency may then
// be called repeatedly. Query calls on one Transformer are serialized.
type Transformer struct {
	opts   options
	metric metric.Metric
	logger *Logger

	mu     sync.Mutex
	k      int
	res    metric.Resolution
	space  distance.Space
	index  index.Index
	fitted *vector.Set
}

// New creates a Transformer. The options are validated here; the metric
// must be known and lp requires a positive p.
func New(optFns ...Option) (*Transformer, error) {
	o := applyOptions(optFns)

	m, err := metric.Parse(o.metric)
	if err != nil {
		return nil, translateError(err)
	}
	if err := validate(o, m); err != nil {
		return nil, err
	}

	logger := o.logger.WithMethod(o.method)
	if m == metric.Lp && o.p < 1 {
		logger.Warn("fractional p does not define a metric; results may be poor", "p", o.p)
	}

	return &Transformer{
		opts:   o,
		metric: m,
		logger: logger,
		k:      o.neighbors,
	}, nil
}

func validate(o options, m metric.Metric) error {
	switch {
	case o.neighbors < 1:
		return fmt.Errorf("%w: neighbors must be positive, got %d", ErrInvalidConfig, o.neighbors)
	case o.jobs == 0 || o.jobs < -1:
		return fmt.Errorf("%w: jobs must be positive or -1, got %d", ErrInvalidConfig, o.jobs)
	case o.m < 1:
		return fmt.Errorf("%w: M must be positive, got %d", ErrInvalidConfig, o.m)
	case o.efConstruction < 1:
		return fmt.Errorf("%w: efConstruction must be positive, got %d", ErrInvalidConfig, o.efConstruction)
	case o.efSearch < 1:
		return fmt.Errorf("%w: efSearch must be positive, got %d", ErrInvalidConfig, o.efSearch)
	case o.post < 0 || o.post > 2:
		return fmt.Errorf("%w: post must be 0, 1 or 2, got %d", ErrInvalidConfig, o.post)
	case o.bucketSize < 0:
		return fmt.Errorf("%w: bucket size must not be negative, got %d", ErrInvalidConfig, o.bucketSize)
	case m == metric.Lp && o.p <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, distance.ErrInvalidP)
	}
	return nil
}

// Metric returns the configured metric.
func (t *Transformer) Metric() metric.Metric { return t.metric }

// Resolution returns the metric resolution of the fitted data. It is the
// zero value before Fit.
func (t *Transformer) Resolution() metric.Resolution {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.res
}

// Neighbors returns the requested neighbor count, self excluded.
func (t *Transformer) Neighbors() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.k
}

// UpdateSearch sets the number of neighbors for subsequent queries.
// The index is not rebuilt. After Fit, k+1 must not exceed the number of
// fitted points.
func (t *Transformer) UpdateSearch(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: neighbors must be positive, got %d", ErrInvalidConfig, k)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fitted != nil {
		if err := checkNeighbors(k, t.fitted.Len()); err != nil {
			return err
		}
	}
	t.k = k
	return nil
}

// checkNeighbors reports whether k neighbors plus the point itself fit in
// n indexed points.
func checkNeighbors(k, n int) error {
	if k+1 > n {
		return fmt.Errorf("%w: %d neighbors need at least %d points, got %d", ErrInvalidConfig, k, k+1, n)
	}
	return nil
}

func (t *Transformer) threads() int {
	if t.opts.jobs == -1 {
		return runtime.GOMAXPROCS(0)
	}
	return t.opts.jobs
}

// prepare normalizes raw input and applies the conversion its metric
// resolution requires.
func (t *Transformer) prepare(ctx context.Context, in any) (*vector.Set, metric.Resolution, error) {
	input, err := dataset.FromAny(in)
	if err != nil {
		return nil, metric.Resolution{}, err
	}
	if _, ok := input.(*dataset.CSR); ok && !t.opts.dense {
		t.logger.DebugContext(ctx, "sparse input, passing through")
	}

	set, err := dataset.Normalize(input, t.opts.dense)
	if err != nil {
		return nil, metric.Resolution{}, err
	}

	res, err := t.metric.Resolve(set.Type)
	if err != nil {
		return nil, metric.Resolution{}, err
	}
	if res.Conversion != metric.ConvertNone {
		t.logger.DebugContext(ctx, "converting data",
			"from", set.Type,
			"to", res.DataType,
			"conversion", res.Conversion,
		)
		if set, err = dataset.Convert(set, res.Conversion); err != nil {
			return nil, metric.Resolution{}, err
		}
	}
	return set, res, nil
}

// Fit builds the index over in. Accepted inputs are the dataset variants
// and the values dataset.FromAny understands. Fitting again replaces the
// index. in must hold more points than the configured neighbor count.
func (t *Transformer) Fit(ctx context.Context, in any) (*Transformer, error) {
	set, res, err := t.prepare(ctx, in)
	if err != nil {
		return nil, translateError(err)
	}
	if err := checkNeighbors(t.Neighbors(), set.Len()); err != nil {
		return nil, err
	}

	space, err := distance.Lookup(res.Space, distance.Params{P: t.opts.p})
	if err != nil {
		return nil, translateError(err)
	}

	params := index.IndexParams{
		M:              t.opts.m,
		IndexThreadQty: t.threads(),
		EfConstruction: t.opts.efConstruction,
		Post:           t.opts.post,
		BucketSize:     t.opts.bucketSize,
	}
	logger := t.logger.WithSpace(space.Name())
	logger.InfoContext(ctx, "index-time parameters",
		"M", params.M,
		"indexThreadQty", params.IndexThreadQty,
		"efConstruction", params.EfConstruction,
		"post", params.Post,
	)
	if params.Post > 0 {
		logger.DebugContext(ctx, "engine has no post-processing pass, post ignored")
	}

	start := time.Now()
	idx, err := t.build(ctx, space, set, params)
	elapsed := time.Since(start)
	t.opts.metricsCollector.RecordFit(set.Len(), elapsed, err)
	logger.LogFit(ctx, set.Len(), elapsed, err)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.res, t.space, t.index, t.fitted = res, space, idx, set
	t.mu.Unlock()
	return t, nil
}

func (t *Transformer) build(ctx context.Context, space distance.Space, set *vector.Set, params index.IndexParams) (index.Index, error) {
	wrap := func(err error) error {
		return &IndexConstructionError{Method: t.opts.method, Space: space.Name(), cause: err}
	}

	idx, err := index.New(t.opts.method, space)
	if err != nil {
		return nil, wrap(err)
	}
	if err := idx.AddBatch(set); err != nil {
		return nil, wrap(err)
	}
	if err := idx.Build(ctx, params); err != nil {
		return nil, wrap(err)
	}
	return idx, nil
}
