// Package recall measures how close approximate neighbor lists come to an
// exact brute-force baseline.
package recall

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/index/flat"
	"github.com/hupe1980/knngraph/vector"
)

// Exact is the brute-force neighbor search used as ground truth.
type Exact struct {
	idx *flat.Flat
}

// NewExact creates an exact searcher over space.
func NewExact(space distance.Space) *Exact {
	return &Exact{idx: flat.New(space)}
}

// Fit indexes data.
func (e *Exact) Fit(ctx context.Context, data *vector.Set) error {
	if err := e.idx.AddBatch(data); err != nil {
		return err
	}
	return e.idx.Build(ctx, index.IndexParams{})
}

// KNeighbors returns the exact k nearest fitted points of every query.
func (e *Exact) KNeighbors(ctx context.Context, queries *vector.Set, k, threads int) ([]index.Neighbors, error) {
	return e.idx.KNNQueryBatch(ctx, queries, k, index.QueryParams{}, threads)
}

// Sample draws ceil(fraction*n) distinct positions out of n, sorted.
// The same seed yields the same sample.
func Sample(n int, fraction float64, seed int64) []int {
	size := int(math.Ceil(fraction * float64(n)))
	size = max(0, min(size, n))

	r := rand.New(rand.NewSource(seed))
	out := r.Perm(n)[:size]
	slices.Sort(out)
	return out
}

// Score returns the mean over queries of |approx ∩ exact| / |exact|.
// Queries with an empty exact list count as fully recalled.
func Score(approx, exact [][]uint32) float64 {
	if len(exact) == 0 {
		return 1
	}

	var sum float64
	truth := bitset.New(0)
	for q, want := range exact {
		if len(want) == 0 {
			sum++
			continue
		}
		truth.ClearAll()
		for _, id := range want {
			truth.Set(uint(id))
		}

		hits := 0
		if q < len(approx) {
			seen := bitset.New(truth.Len())
			for _, id := range approx[q] {
				if truth.Test(uint(id)) && !seen.Test(uint(id)) {
					seen.Set(uint(id))
					hits++
				}
			}
		}
		sum += float64(hits) / float64(len(want))
	}
	return sum / float64(len(exact))
}

// Report is the outcome of an efficiency test.
type Report struct {
	// Recall is the mean recall of the approximate index over all queries.
	Recall float64

	// Queries is the number of queries scored.
	Queries int

	// SampleSize is the number of points in the timing sample.
	SampleSize int

	// ANNTime is the approximate query time over all queries.
	ANNTime time.Duration

	// SampleTime is the approximate query time over the sample.
	SampleTime time.Duration

	// ExactTime is the brute-force build plus query time.
	ExactTime time.Duration
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("recall", r.Recall),
		slog.Int("queries", r.Queries),
		slog.Int("sample_size", r.SampleSize),
		slog.Duration("ann_time", r.ANNTime),
		slog.Duration("sample_time", r.SampleTime),
		slog.Duration("exact_time", r.ExactTime),
	)
}
