// Package graph assembles per-query neighbor lists into a sparse
// row-compressed neighbor graph and encodes it for export.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/knngraph/index"
)

// ErrShape is returned when neighbor lists do not form a valid graph.
var ErrShape = errors.New("graph: invalid shape")

// CSR is a Rows x Cols sparse matrix in compressed sparse row form.
// Row i holds the neighbors of query i in Indices[Indptr[i]:Indptr[i+1]],
// with the matching distances in Data.
type CSR struct {
	Rows    int
	Cols    int
	Indptr  []int
	Indices []uint32
	Data    []float32
}

// Triplet is one stored entry of the graph.
type Triplet struct {
	Row   int
	Col   int
	Value float32
}

// Assemble flattens equal-length neighbor lists into a CSR graph.
// Every row must hold the same number of neighbors k, so Indptr[i] = i*k.
func Assemble(ids [][]uint32, dists [][]float32, cols int) (*CSR, error) {
	if len(ids) != len(dists) {
		return nil, fmt.Errorf("%w: %d id rows but %d distance rows", ErrShape, len(ids), len(dists))
	}

	k := 0
	if len(ids) > 0 {
		k = len(ids[0])
	}

	g := &CSR{
		Rows:    len(ids),
		Cols:    cols,
		Indptr:  make([]int, len(ids)+1),
		Indices: make([]uint32, 0, len(ids)*k),
		Data:    make([]float32, 0, len(ids)*k),
	}

	for i := range ids {
		if len(ids[i]) != k || len(dists[i]) != k {
			return nil, fmt.Errorf("%w: row %d has %d neighbors, want %d", ErrShape, i, len(ids[i]), k)
		}
		for _, id := range ids[i] {
			if int(id) >= cols {
				return nil, fmt.Errorf("%w: row %d references column %d of %d", ErrShape, i, id, cols)
			}
		}
		g.Indices = append(g.Indices, ids[i]...)
		g.Data = append(g.Data, dists[i]...)
		g.Indptr[i+1] = (i + 1) * k
	}

	return g, nil
}

// FromNeighbors assembles a graph from query results.
func FromNeighbors(res []index.Neighbors, cols int) (*CSR, error) {
	ids := make([][]uint32, len(res))
	dists := make([][]float32, len(res))
	for i, r := range res {
		ids[i] = r.IDs()
		dists[i] = r.Distances()
	}
	return Assemble(ids, dists, cols)
}

// Row returns the column indices and values stored for row i.
// The slices alias the graph.
func (g *CSR) Row(i int) ([]uint32, []float32) {
	lo, hi := g.Indptr[i], g.Indptr[i+1]
	return g.Indices[lo:hi], g.Data[lo:hi]
}

// NNZ returns the number of stored entries, zeros included.
func (g *CSR) NNZ() int { return len(g.Indices) }

// Find returns the non-zero entries ordered by row, then column.
// Explicitly stored zeros, such as self matches, are skipped.
func (g *CSR) Find() []Triplet {
	out := make([]Triplet, 0, g.NNZ())
	for i := 0; i < g.Rows; i++ {
		start := len(out)
		cols, vals := g.Row(i)
		for j, c := range cols {
			if vals[j] != 0 {
				out = append(out, Triplet{Row: i, Col: int(c), Value: vals[j]})
			}
		}
		slices.SortStableFunc(out[start:], func(a, b Triplet) int { return a.Col - b.Col })
	}
	return out
}

// Dense materializes the graph. Duplicate entries are summed.
func (g *CSR) Dense() [][]float32 {
	out := make([][]float32, g.Rows)
	for i := range out {
		out[i] = make([]float32, g.Cols)
		cols, vals := g.Row(i)
		for j, c := range cols {
			out[i][c] += vals[j]
		}
	}
	return out
}
