package index

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/vector"
	"golang.org/x/sync/errgroup"
)

// SearchFunc answers a single query row.
type SearchFunc func(row int) (Neighbors, error)

// Batch runs search for rows [0, n) on up to threads goroutines and
// collects the results in row order. A threads value <= 0 uses GOMAXPROCS.
//
// The first failing row cancels the remaining work and is reported as a
// *QueryError. Cancellation of ctx is checked between rows.
func Batch(ctx context.Context, n, threads int, search SearchFunc) ([]Neighbors, error) {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	workers := min(threads, n)
	out := make([]Neighbors, n)

	g, gctx := errgroup.WithContext(ctx)
	var next atomic.Int64
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				row := int(next.Add(1) - 1)
				if row >= n {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := search(row)
				if err != nil {
					return NewQueryError(row, err)
				}
				out[row] = res
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckQuery validates a query batch against an index: the batch must use
// the space's data type and k must lie in [1, idx.Len()].
func CheckQuery(idx Index, queries *vector.Set, k int) error {
	if k <= 0 {
		return NewQueryError(-1, ErrInvalidK)
	}
	if want := idx.Space().DataType(); queries.Type != want {
		return NewQueryError(-1, &DataTypeError{Expected: want, Actual: queries.Type})
	}
	if n := idx.Len(); k > n {
		return NewQueryError(-1, fmt.Errorf("k=%d exceeds the %d indexed points", k, n))
	}
	return nil
}

// CheckData validates a dataset passed to AddBatch.
func CheckData(space distance.Space, data *vector.Set) error {
	if data == nil || data.Len() == 0 {
		return ErrEmptyData
	}
	if data.Type != space.DataType() {
		return &DataTypeError{Expected: space.DataType(), Actual: data.Type}
	}
	return nil
}
