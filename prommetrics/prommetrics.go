// Package prommetrics exports transformer metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/hupe1980/knngraph"
	"github.com/prometheus/client_golang/prometheus"
)

// Compile-time check to ensure Collector satisfies the metrics interface.
var _ knngraph.MetricsCollector = (*Collector)(nil)

// Collector implements knngraph.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency *prometheus.HistogramVec
	points    prometheus.Counter
	queries   prometheus.Counter
	k         prometheus.Gauge
	recall    prometheus.Gauge
}

// New creates a Collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "knngraph_operation_latency_seconds",
			Help:    "Latency of index builds and query batches",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"op", "status"}),
		points: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knngraph_indexed_points_total",
			Help: "Total points indexed by successful builds",
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knngraph_queries_total",
			Help: "Total query rows answered",
		}),
		k: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "knngraph_effective_k",
			Help: "Neighbors per row of the last query batch, self included",
		}),
		recall: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "knngraph_recall_ratio",
			Help: "Recall of the last efficiency test (0.0-1.0)",
		}),
	}
	reg.MustRegister(c.opLatency, c.points, c.queries, c.k, c.recall)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordFit implements knngraph.MetricsCollector.
func (c *Collector) RecordFit(points int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("fit", status(err)).Observe(d.Seconds())
	if err == nil {
		c.points.Add(float64(points))
	}
}

// RecordQuery implements knngraph.MetricsCollector.
func (c *Collector) RecordQuery(queries, k int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("query", status(err)).Observe(d.Seconds())
	if err == nil {
		c.queries.Add(float64(queries))
		c.k.Set(float64(k))
	}
}

// RecordRecall implements knngraph.MetricsCollector.
func (c *Collector) RecordRecall(recall float64, _ int) {
	c.recall.Set(recall)
}
