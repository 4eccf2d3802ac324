// Package hnsw provides the graph methods hnsw and sw-graph on top of
// github.com/coder/hnsw.
//
// Dense points are stored in the graph as-is. Sparse and string points have
// no fixed-width vector form, so the graph stores a three component handle
// [kind, id>>16, id&0xffff] per point and the distance function resolves
// handles back to the staged dataset or the current query batch.
//
// Builds are not reproducible even with a fixed level seed: the underlying
// graph picks its search entry point by map iteration, so neighbor lists may
// differ between runs when efSearch is small.
package hnsw

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/coder/hnsw"
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/vector"
)

// Compile-time check to ensure Graph satisfies the index interface.
var _ index.Index = (*Graph)(nil)

func init() {
	index.Register(index.MethodHNSW, func(space distance.Space) (index.Index, error) {
		return New(index.MethodHNSW, space), nil
	})
	index.Register(index.MethodSWGraph, func(space distance.Space) (index.Index, error) {
		return New(index.MethodSWGraph, space), nil
	})
}

// ErrShortResult is returned when the graph yields fewer than k neighbors.
var ErrShortResult = errors.New("graph returned too few neighbors")

const (
	kindIndexed float32 = 0
	kindQuery   float32 = 1

	// swGraphMl keeps every node on the base layer.
	swGraphMl = 1e-9

	addChunk  = 1024
	// buildSeed fixes level assignment only.
	buildSeed = 42
)

// Graph is a navigable small world index.
type Graph struct {
	method  string
	space   distance.Space
	data    *vector.Set
	handles bool
	graph   *hnsw.Graph[uint32]
	built   atomic.Bool

	// mu serializes the EfSearch setter with the batch that relies on it.
	mu sync.Mutex
	// queries is the batch handles of kindQuery resolve against. Guarded by mu.
	queries *vector.Set
}

// New creates an empty graph index. method is index.MethodHNSW or
// index.MethodSWGraph.
func New(method string, space distance.Space) *Graph {
	return &Graph{
		method:  method,
		space:   space,
		handles: space.DataType() != vector.DenseVector,
	}
}

// Method implements index.Index.
func (g *Graph) Method() string { return g.method }

// Space implements index.Index.
func (g *Graph) Space() distance.Space { return g.space }

// Len implements index.Index.
func (g *Graph) Len() int {
	if g.data == nil {
		return 0
	}
	return g.data.Len()
}

// AddBatch implements index.Index.
func (g *Graph) AddBatch(data *vector.Set) error {
	if g.built.Load() || g.data != nil {
		return index.ErrAlreadyBuilt
	}
	if err := index.CheckData(g.space, data); err != nil {
		return err
	}
	if data.Type == vector.DenseVector && data.Dim == 0 {
		return errors.New("zero-dimensional vectors")
	}
	g.data = data
	return nil
}

// Build implements index.Index. Insertion into the underlying graph is
// sequential, so IndexThreadQty is not used.
func (g *Graph) Build(ctx context.Context, params index.IndexParams) error {
	if g.built.Load() {
		return index.ErrAlreadyBuilt
	}
	if g.data == nil {
		return index.ErrEmptyData
	}

	m := max(params.M, 2)
	gr := hnsw.NewGraph[uint32]()
	gr.M = m
	gr.Ml = 1 / float64(m)
	if g.method == index.MethodSWGraph {
		gr.Ml = swGraphMl
	}
	gr.EfSearch = max(params.EfConstruction, m)
	gr.Rng = rand.New(rand.NewSource(buildSeed))
	gr.Distance = g.distanceFunc()

	n := g.data.Len()
	nodes := make([]hnsw.Node[uint32], 0, min(addChunk, n))
	for start := 0; start < n; start += addChunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		nodes = nodes[:0]
		for id := start; id < min(start+addChunk, n); id++ {
			nodes = append(nodes, hnsw.MakeNode(uint32(id), g.point(id)))
		}
		gr.Add(nodes...)
	}

	g.graph = gr
	g.built.Store(true)
	return nil
}

// KNNQueryBatch implements index.Index.
func (g *Graph) KNNQueryBatch(ctx context.Context, queries *vector.Set, k int, params index.QueryParams, threads int) ([]index.Neighbors, error) {
	if !g.built.Load() {
		return nil, index.ErrNotBuilt
	}
	if err := index.CheckQuery(g, queries, k); err != nil {
		return nil, err
	}
	if queries.Type == vector.DenseVector && queries.Dim != g.data.Dim {
		return nil, index.NewQueryError(-1, fmt.Errorf("query dimension %d, index dimension %d", queries.Dim, g.data.Dim))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.graph.EfSearch = max(params.EfSearch, k)
	g.queries = queries
	defer func() { g.queries = nil }()

	return index.Batch(ctx, queries.Len(), threads, func(row int) (index.Neighbors, error) {
		return g.search(queries, row, k)
	})
}

func (g *Graph) search(queries *vector.Set, row, k int) (index.Neighbors, error) {
	near := g.queryPoint(queries, row)
	// The result set of Search is bounded by its k argument, so the
	// candidate list is requested at efSearch width and cut afterwards.
	nodes := g.graph.Search(near, max(k, g.graph.EfSearch))
	if len(nodes) < k {
		return nil, fmt.Errorf("%w: %d of %d", ErrShortResult, len(nodes), k)
	}
	out := make(index.Neighbors, len(nodes))
	for i, n := range nodes {
		out[i] = index.Neighbor{ID: n.Key, Distance: g.space.Distance(queries, row, g.data, int(n.Key))}
	}
	out.Sort()
	return out[:k], nil
}

func (g *Graph) point(id int) []float32 {
	if g.handles {
		return handle(kindIndexed, id)
	}
	return g.data.Dense[id]
}

func (g *Graph) queryPoint(queries *vector.Set, row int) []float32 {
	if g.handles {
		return handle(kindQuery, row)
	}
	return queries.Dense[row]
}

func (g *Graph) distanceFunc() hnsw.DistanceFunc {
	if !g.handles {
		return hnsw.DistanceFunc(g.space.DenseFunc())
	}
	return func(a, b []float32) float32 {
		as, ai := g.resolve(a)
		bs, bi := g.resolve(b)
		return g.space.Distance(as, ai, bs, bi)
	}
}

func (g *Graph) resolve(h []float32) (*vector.Set, int) {
	id := int(h[1])<<16 | int(h[2])
	if h[0] == kindQuery {
		return g.queries, id
	}
	return g.data, id
}

func handle(kind float32, id int) []float32 {
	return []float32{kind, float32(id >> 16), float32(id & 0xffff)}
}
