// Package vptree provides the vp-tree method: an exact vantage-point tree.
//
// Pruning relies on the triangle inequality, so only metric spaces are
// accepted. Dense, sparse and string spaces are all supported since the
// tree only ever evaluates the space's distance function.
package vptree

import (
	"context"
	"math"
	"math/bits"
	"slices"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/internal/queue"
	"github.com/hupe1980/knngraph/vector"
	"golang.org/x/sync/errgroup"
)

// Compile-time check to ensure Tree satisfies the index interface.
var _ index.Index = (*Tree)(nil)

func init() {
	index.Register(index.MethodVPTree, func(space distance.Space) (index.Index, error) {
		return New(space)
	})
}

// DefaultBucketSize is the leaf size used when IndexParams.BucketSize is unset.
const DefaultBucketSize = 32

type node struct {
	vp     uint32
	mu     float32
	inner  *node
	outer  *node
	bucket []uint32
}

// Tree is a vantage-point tree over a metric space.
type Tree struct {
	space  distance.Space
	data   *vector.Set
	root   *node
	bucket int
	built  bool
}

// New creates an empty tree. Non-metric spaces are rejected.
func New(space distance.Space) (*Tree, error) {
	if !space.IsMetric() {
		return nil, &index.UnsupportedSpaceError{Method: index.MethodVPTree, Space: space.Name()}
	}
	return &Tree{space: space}, nil
}

// Method implements index.Index.
func (t *Tree) Method() string { return index.MethodVPTree }

// Space implements index.Index.
func (t *Tree) Space() distance.Space { return t.space }

// Len implements index.Index.
func (t *Tree) Len() int {
	if t.data == nil {
		return 0
	}
	return t.data.Len()
}

// AddBatch implements index.Index.
func (t *Tree) AddBatch(data *vector.Set) error {
	if t.built || t.data != nil {
		return index.ErrAlreadyBuilt
	}
	if err := index.CheckData(t.space, data); err != nil {
		return err
	}
	t.data = data
	return nil
}

// Build implements index.Index. The top levels of the tree are built
// concurrently on up to IndexThreadQty goroutines.
func (t *Tree) Build(ctx context.Context, params index.IndexParams) error {
	if t.built {
		return index.ErrAlreadyBuilt
	}
	if t.data == nil {
		return index.ErrEmptyData
	}
	t.bucket = params.BucketSize
	if t.bucket <= 0 {
		t.bucket = DefaultBucketSize
	}

	ids := make([]uint32, t.data.Len())
	for i := range ids {
		ids[i] = uint32(i)
	}

	// Subtrees above this depth get their own goroutine.
	parDepth := bits.Len(uint(max(params.IndexThreadQty, 1))) - 1

	g, gctx := errgroup.WithContext(ctx)
	var root *node
	g.Go(func() error {
		var err error
		root, err = t.build(gctx, g, ids, 0, parDepth)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	t.root = root
	t.built = true
	return nil
}

func (t *Tree) build(ctx context.Context, g *errgroup.Group, ids []uint32, depth, parDepth int) (*node, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ids) <= t.bucket {
		return &node{bucket: ids}, nil
	}

	// Deterministic spread-out choice of the vantage point.
	pick := int(uint64(len(ids)) * 2654435761 % uint64(len(ids)))
	ids[pick], ids[len(ids)-1] = ids[len(ids)-1], ids[pick]
	vp := ids[len(ids)-1]
	rest := ids[:len(ids)-1]

	dists := make(map[uint32]float32, len(rest))
	for _, id := range rest {
		dists[id] = t.space.Distance(t.data, int(vp), t.data, int(id))
	}
	slices.SortFunc(rest, func(a, b uint32) int {
		return index.Compare(index.Neighbor{ID: a, Distance: dists[a]}, index.Neighbor{ID: b, Distance: dists[b]})
	})

	m := len(rest) / 2
	n := &node{vp: vp, mu: dists[rest[m]]}

	if depth < parDepth {
		g.Go(func() error {
			var err error
			n.inner, err = t.build(ctx, g, rest[:m], depth+1, parDepth)
			return err
		})
	} else {
		inner, err := t.build(ctx, g, rest[:m], depth+1, parDepth)
		if err != nil {
			return nil, err
		}
		n.inner = inner
	}
	outer, err := t.build(ctx, g, rest[m:], depth+1, parDepth)
	if err != nil {
		return nil, err
	}
	n.outer = outer
	return n, nil
}

// KNNQueryBatch implements index.Index.
func (t *Tree) KNNQueryBatch(ctx context.Context, queries *vector.Set, k int, _ index.QueryParams, threads int) ([]index.Neighbors, error) {
	if !t.built {
		return nil, index.ErrNotBuilt
	}
	if err := index.CheckQuery(t, queries, k); err != nil {
		return nil, err
	}
	return index.Batch(ctx, queries.Len(), threads, func(row int) (index.Neighbors, error) {
		top := queue.NewTopK(k)
		t.search(t.root, queries, row, top)
		return top.Sorted(), nil
	})
}

func (t *Tree) search(n *node, queries *vector.Set, row int, top *queue.TopK) {
	if n == nil {
		return
	}
	if n.bucket != nil {
		for _, id := range n.bucket {
			top.Push(index.Neighbor{ID: id, Distance: t.space.Distance(queries, row, t.data, int(id))})
		}
		return
	}

	d := t.space.Distance(queries, row, t.data, int(n.vp))
	top.Push(index.Neighbor{ID: n.vp, Distance: d})

	if d < n.mu {
		t.search(n.inner, queries, row, top)
		if d+tau(top) >= n.mu {
			t.search(n.outer, queries, row, top)
		}
		return
	}
	t.search(n.outer, queries, row, top)
	if d-tau(top) <= n.mu {
		t.search(n.inner, queries, row, top)
	}
}

func tau(top *queue.TopK) float32 {
	if b, ok := top.Bound(); ok {
		return b
	}
	return math.MaxFloat32
}
