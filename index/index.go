package index

import (
	"cmp"
	"context"
	"slices"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/vector"
)

// Method names.
const (
	MethodHNSW       = "hnsw"
	MethodSWGraph    = "sw-graph"
	MethodBruteForce = "brute_force"
	MethodInvIndex   = "simple_invindx"
	MethodVPTree     = "vp-tree"
)

// Neighbor is one query result.
type Neighbor struct {
	// ID is the position of the point in the indexed dataset.
	ID uint32

	// Distance is the distance between the query and the point.
	Distance float32
}

// Neighbors holds the results of one query ordered by increasing distance,
// ties broken by ID.
type Neighbors []Neighbor

// IDs returns the neighbor positions.
func (n Neighbors) IDs() []uint32 {
	out := make([]uint32, len(n))
	for i, nb := range n {
		out[i] = nb.ID
	}
	return out
}

// Distances returns the neighbor distances.
func (n Neighbors) Distances() []float32 {
	out := make([]float32, len(n))
	for i, nb := range n {
		out[i] = nb.Distance
	}
	return out
}

// Compare orders neighbors by distance, then by ID.
func Compare(a, b Neighbor) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Sort orders n by distance, then by ID.
func (n Neighbors) Sort() { slices.SortFunc(n, Compare) }

// IndexParams are the index-time parameters.
type IndexParams struct {
	// M is the maximum number of neighbors per graph node.
	M int

	// IndexThreadQty is the number of goroutines used while building.
	IndexThreadQty int

	// EfConstruction is the candidate list size during graph construction.
	EfConstruction int

	// Post is the graph post-processing level (0..2). Engines without a
	// post-processing pass ignore it.
	Post int

	// BucketSize is the number of points per vp-tree leaf.
	BucketSize int
}

// QueryParams are the query-time parameters.
type QueryParams struct {
	// EfSearch is the candidate list size during graph search.
	EfSearch int
}

// Index is an ANN index over one space.
//
// Implementations must allow concurrent KNNQueryBatch calls once built.
type Index interface {
	// Method returns the registered method name.
	Method() string

	// Space returns the space the index was created for.
	Space() distance.Space

	// AddBatch stages the dataset. It may be called only once, before Build.
	AddBatch(data *vector.Set) error

	// Build constructs the index over the staged dataset.
	Build(ctx context.Context, params IndexParams) error

	// KNNQueryBatch returns the k nearest indexed points for every query,
	// in query order, using up to threads goroutines.
	KNNQueryBatch(ctx context.Context, queries *vector.Set, k int, params QueryParams, threads int) ([]Neighbors, error)

	// Len returns the number of indexed points.
	Len() int
}
