package knngraph

import (
	"log/slog"

	"github.com/hupe1980/knngraph/index"
)

// Defaults of a Transformer built without options.
const (
	DefaultNeighbors      = 30
	DefaultMetric         = "cosine"
	DefaultMethod         = index.MethodHNSW
	DefaultJobs           = 10
	DefaultM              = 30
	DefaultEfConstruction = 100
	DefaultEfSearch       = 100
	DefaultPost           = 2
	DefaultSeed           = 42
)

type options struct {
	neighbors        int
	metric           string
	method           string
	jobs             int
	m                int
	efConstruction   int
	efSearch         int
	post             int
	p                float64
	dense            bool
	bucketSize       int
	seed             int64
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Transformer.
type Option func(*options)

// WithNeighbors sets the number of neighbors to look for, not counting the
// query point itself.
func WithNeighbors(k int) Option {
	return func(o *options) {
		o.neighbors = k
	}
}

// WithMetric sets the metric name. See metric.All for the accepted names.
func WithMetric(name string) Option {
	return func(o *options) {
		o.metric = name
	}
}

// WithMethod sets the index method: "hnsw", "sw-graph", "vp-tree",
// "simple_invindx" or "brute_force".
func WithMethod(method string) Option {
	return func(o *options) {
		o.method = method
	}
}

// WithJobs sets the number of goroutines used for building and querying.
// -1 uses all CPUs.
func WithJobs(n int) Option {
	return func(o *options) {
		o.jobs = n
	}
}

// WithM sets the maximum number of neighbors per graph node.
// Reasonable values are 5 to 100; higher values increase recall and memory.
func WithM(m int) Option {
	return func(o *options) {
		o.m = m
	}
}

// WithEfConstruction sets the candidate list size while building the graph.
// Larger values give a better graph at the cost of indexing time.
func WithEfConstruction(ef int) Option {
	return func(o *options) {
		o.efConstruction = ef
	}
}

// WithEfSearch sets the candidate list size while querying.
// Larger values increase recall at the cost of query time.
func WithEfSearch(ef int) Option {
	return func(o *options) {
		o.efSearch = ef
	}
}

// WithPost sets the graph post-processing level (0, 1 or 2).
func WithPost(post int) Option {
	return func(o *options) {
		o.post = post
	}
}

// WithP sets the exponent of the lp metric.
func WithP(p float64) Option {
	return func(o *options) {
		o.p = p
	}
}

// WithDense keeps dense input dense instead of converting it to sparse.
func WithDense(dense bool) Option {
	return func(o *options) {
		o.dense = dense
	}
}

// WithBucketSize sets the number of points per vp-tree leaf.
// Zero uses the engine default.
func WithBucketSize(n int) Option {
	return func(o *options) {
		o.bucketSize = n
	}
}

// WithSeed sets the seed for the efficiency test sample.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &knngraph.BasicMetricsCollector{}
//	t, _ := knngraph.New(knngraph.WithMetricsCollector(metrics))
//	// ... fit and transform ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := knngraph.NewJSONLogger(slog.LevelInfo)
//	t, _ := knngraph.New(knngraph.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithVerbose logs progress and timings at info level when true.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		if verbose {
			o.logger = NewTextLogger(slog.LevelInfo)
		} else {
			o.logger = NoopLogger()
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		neighbors:        DefaultNeighbors,
		metric:           DefaultMetric,
		method:           DefaultMethod,
		jobs:             DefaultJobs,
		m:                DefaultM,
		efConstruction:   DefaultEfConstruction,
		efSearch:         DefaultEfSearch,
		post:             DefaultPost,
		seed:             DefaultSeed,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
