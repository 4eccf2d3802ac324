package knngraph

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see package prommetrics for a ready-made implementation.
type MetricsCollector interface {
	// RecordFit is called after each index build.
	// points is the dataset size, duration the build time, err nil on success.
	RecordFit(points int, duration time.Duration, err error)

	// RecordQuery is called after each query batch.
	// k is the effective neighbor count (self included).
	RecordQuery(queries, k int, duration time.Duration, err error)

	// RecordRecall is called after each efficiency test.
	RecordRecall(recall float64, queries int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordQuery(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRecall(float64, int)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount        atomic.Int64
	FitErrors       atomic.Int64
	FitTotalNanos   atomic.Int64
	FitPoints       atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	QueryRows       atomic.Int64
	RecallCount     atomic.Int64
	lastRecall      atomic.Uint64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(points int, duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
		return
	}
	b.FitPoints.Add(int64(points))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(queries, _ int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.QueryRows.Add(int64(queries))
}

// RecordRecall implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecall(recall float64, _ int) {
	b.RecallCount.Add(1)
	b.lastRecall.Store(math.Float64bits(recall))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FitCount:      b.FitCount.Load(),
		FitErrors:     b.FitErrors.Load(),
		FitAvgNanos:   avg(b.FitTotalNanos.Load(), b.FitCount.Load()),
		FitPoints:     b.FitPoints.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		QueryAvgNanos: avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		QueryRows:     b.QueryRows.Load(),
		RecallCount:   b.RecallCount.Load(),
		LastRecall:    math.Float64frombits(b.lastRecall.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FitCount      int64
	FitErrors     int64
	FitAvgNanos   int64
	FitPoints     int64
	QueryCount    int64
	QueryErrors   int64
	QueryAvgNanos int64
	QueryRows     int64
	RecallCount   int64
	LastRecall    float64
}
