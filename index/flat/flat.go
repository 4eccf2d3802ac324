// Package flat provides the brute_force method: an exhaustive scan that
// returns exact neighbors for any space.
package flat

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/internal/queue"
	"github.com/hupe1980/knngraph/vector"
)

// Compile-time check to ensure Flat satisfies the index interface.
var _ index.Index = (*Flat)(nil)

func init() {
	index.Register(index.MethodBruteForce, func(space distance.Space) (index.Index, error) {
		return New(space), nil
	})
}

// Flat is an exhaustive-scan index.
type Flat struct {
	space distance.Space
	data  *vector.Set
	built atomic.Bool
}

// New creates an empty flat index over space.
func New(space distance.Space) *Flat {
	return &Flat{space: space}
}

// Method implements index.Index.
func (f *Flat) Method() string { return index.MethodBruteForce }

// Space implements index.Index.
func (f *Flat) Space() distance.Space { return f.space }

// Len implements index.Index.
func (f *Flat) Len() int {
	if f.data == nil {
		return 0
	}
	return f.data.Len()
}

// AddBatch implements index.Index.
func (f *Flat) AddBatch(data *vector.Set) error {
	if f.built.Load() || f.data != nil {
		return index.ErrAlreadyBuilt
	}
	if err := index.CheckData(f.space, data); err != nil {
		return err
	}
	f.data = data
	return nil
}

// Build implements index.Index. A flat index has nothing to build beyond
// the staged data, so all parameters are ignored.
func (f *Flat) Build(ctx context.Context, _ index.IndexParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.data == nil {
		return index.ErrEmptyData
	}
	f.built.Store(true)
	return nil
}

// KNNQueryBatch implements index.Index.
func (f *Flat) KNNQueryBatch(ctx context.Context, queries *vector.Set, k int, _ index.QueryParams, threads int) ([]index.Neighbors, error) {
	if !f.built.Load() {
		return nil, index.ErrNotBuilt
	}
	if err := index.CheckQuery(f, queries, k); err != nil {
		return nil, err
	}
	return index.Batch(ctx, queries.Len(), threads, func(row int) (index.Neighbors, error) {
		return f.Search(queries, row, k), nil
	})
}

// Search returns the k exact nearest neighbors of point row of queries.
func (f *Flat) Search(queries *vector.Set, row, k int) index.Neighbors {
	top := queue.NewTopK(k)
	for id := 0; id < f.data.Len(); id++ {
		top.Push(index.Neighbor{ID: uint32(id), Distance: f.space.Distance(queries, row, f.data, id)})
	}
	return top.Sorted()
}
