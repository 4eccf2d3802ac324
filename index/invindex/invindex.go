// Package invindex provides the simple_invindx method: an exact inverted
// index over sparse features for the negdotprod_sparse_fast space.
//
// Every feature keeps a roaring bitmap of the points that store it. A query
// only scores the union of the postings of its own features; every other
// point has a dot product of zero with the query.
package invindex

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/internal/queue"
	"github.com/hupe1980/knngraph/vector"
	"golang.org/x/sync/errgroup"
)

// Compile-time check to ensure InvIndex satisfies the index interface.
var _ index.Index = (*InvIndex)(nil)

func init() {
	index.Register(index.MethodInvIndex, func(space distance.Space) (index.Index, error) {
		return New(space)
	})
}

// InvIndex is an inverted index over sparse vectors.
type InvIndex struct {
	space    distance.Space
	data     *vector.Set
	postings map[int32]*roaring.Bitmap
	built    bool
}

// New creates an empty inverted index. Only the negdotprod_sparse_fast
// space is supported.
func New(space distance.Space) (*InvIndex, error) {
	if space.Name() != distance.SpaceNegDotSparse {
		return nil, &index.UnsupportedSpaceError{Method: index.MethodInvIndex, Space: space.Name()}
	}
	return &InvIndex{space: space}, nil
}

// Method implements index.Index.
func (ii *InvIndex) Method() string { return index.MethodInvIndex }

// Space implements index.Index.
func (ii *InvIndex) Space() distance.Space { return ii.space }

// Len implements index.Index.
func (ii *InvIndex) Len() int {
	if ii.data == nil {
		return 0
	}
	return ii.data.Len()
}

// AddBatch implements index.Index.
func (ii *InvIndex) AddBatch(data *vector.Set) error {
	if ii.built || ii.data != nil {
		return index.ErrAlreadyBuilt
	}
	if err := index.CheckData(ii.space, data); err != nil {
		return err
	}
	ii.data = data
	return nil
}

// Build implements index.Index. Postings are collected in IndexThreadQty
// shards and merged.
func (ii *InvIndex) Build(ctx context.Context, params index.IndexParams) error {
	if ii.built {
		return index.ErrAlreadyBuilt
	}
	if ii.data == nil {
		return index.ErrEmptyData
	}

	n := ii.data.Len()
	shards := max(1, min(params.IndexThreadQty, n))
	partial := make([]map[int32]*roaring.Bitmap, shards)

	g, gctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		g.Go(func() error {
			local := make(map[int32]*roaring.Bitmap)
			for id := s * n / shards; id < (s+1)*n/shards; id++ {
				if id%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				for _, f := range ii.data.Sparse[id].Indices {
					bm, ok := local[f]
					if !ok {
						bm = roaring.New()
						local[f] = bm
					}
					bm.Add(uint32(id))
				}
			}
			partial[s] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ii.postings = partial[0]
	for _, local := range partial[1:] {
		for f, bm := range local {
			if dst, ok := ii.postings[f]; ok {
				dst.Or(bm)
			} else {
				ii.postings[f] = bm
			}
		}
	}
	for _, bm := range ii.postings {
		bm.RunOptimize()
	}
	ii.built = true
	return nil
}

// KNNQueryBatch implements index.Index.
func (ii *InvIndex) KNNQueryBatch(ctx context.Context, queries *vector.Set, k int, _ index.QueryParams, threads int) ([]index.Neighbors, error) {
	if !ii.built {
		return nil, index.ErrNotBuilt
	}
	if err := index.CheckQuery(ii, queries, k); err != nil {
		return nil, err
	}
	return index.Batch(ctx, queries.Len(), threads, func(row int) (index.Neighbors, error) {
		return ii.search(queries, row, k), nil
	})
}

// Candidates returns the points sharing at least one feature with q.
func (ii *InvIndex) Candidates(q vector.Sparse) *roaring.Bitmap {
	lists := make([]*roaring.Bitmap, 0, len(q.Indices))
	for _, f := range q.Indices {
		if bm, ok := ii.postings[f]; ok {
			lists = append(lists, bm)
		}
	}
	return roaring.FastOr(lists...)
}

func (ii *InvIndex) search(queries *vector.Set, row, k int) index.Neighbors {
	cand := ii.Candidates(queries.Sparse[row])
	top := queue.NewTopK(k)

	it := cand.Iterator()
	for it.HasNext() {
		id := it.Next()
		top.Push(index.Neighbor{ID: id, Distance: ii.space.Distance(queries, row, ii.data, int(id))})
	}

	// Points outside the candidate set score exactly zero. Offer them in ID
	// order until one is rejected; all later ones would be rejected as well.
	n := ii.data.Len()
	for id := 0; id < n; id++ {
		if cand.Contains(uint32(id)) {
			continue
		}
		if !top.Push(index.Neighbor{ID: uint32(id)}) {
			break
		}
	}
	return top.Sorted()
}
