// Package gradient computes per-edge distance gradients of a neighbor graph.
//
// For an edge between query point x and fitted point y with graph value d,
// the gradient is the derivative of the metric with respect to x. Gradients
// are defined for sqeuclidean, euclidean, cosine and linf.
//
// Euclidean edges are scaled by 1/(eps+sqrt(d)) and sqeuclidean edges by
// 1/(eps+d), where d is the graph value of the edge.
package gradient

import (
	"math"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/graph"
	"github.com/hupe1980/knngraph/metric"
	"github.com/hupe1980/knngraph/vector"
)

// eps keeps euclidean gradients finite for coincident points.
const eps = 1e-6

// Edge is the gradient of one retained graph entry.
type Edge struct {
	Row  int
	Col  int
	Grad []float32
}

// Supported reports whether Compute is defined for m.
func Supported(m metric.Metric) bool { return m.HasGradient() }

// Compute returns one Edge per triplet. Row indexes queries, Col indexes
// fitted. Points are materialized dense. It returns nil when m has no
// gradient.
func Compute(triplets []graph.Triplet, queries, fitted *vector.Set, m metric.Metric) []Edge {
	var fn func(x, y []float32, d float32) []float32
	switch m {
	case metric.Cosine:
		fn = cosine
	case metric.Euclidean:
		fn = func(x, y []float32, d float32) []float32 { return scaledDiff(x, y, eps+math.Sqrt(float64(d))) }
	case metric.SqEuclidean:
		fn = func(x, y []float32, d float32) []float32 { return scaledDiff(x, y, eps+float64(d)) }
	case metric.Linf:
		fn = linf
	default:
		return nil
	}

	out := make([]Edge, len(triplets))
	for i, t := range triplets {
		x := queries.DenseRow(t.Row)
		y := fitted.DenseRow(t.Col)
		out[i] = Edge{Row: t.Row, Col: t.Col, Grad: fn(x, y, t.Value)}
	}
	return out
}

func cosine(x, y []float32, _ float32) []float32 {
	g := make([]float32, len(x))

	nx := float64(distance.Dot(x, x))
	ny := float64(distance.Dot(y, y))
	if nx == 0 || ny == 0 {
		return g
	}

	dot := float64(distance.Dot(x, y))
	denom := math.Sqrt(nx * nx * nx * ny)
	for i := range g {
		g[i] = float32(-(float64(x[i])*dot - float64(y[i])*nx) / denom)
	}
	return g
}

func scaledDiff(x, y []float32, denom float64) []float32 {
	g := make([]float32, len(x))
	for i := range g {
		g[i] = float32(float64(x[i]-y[i]) / denom)
	}
	return g
}

func linf(x, y []float32, _ float32) []float32 {
	g := make([]float32, len(x))
	if len(g) == 0 {
		return g
	}

	arg, best := 0, float32(-1)
	for i := range x {
		if d := float32(math.Abs(float64(x[i] - y[i]))); d > best {
			arg, best = i, d
		}
	}

	switch diff := x[arg] - y[arg]; {
	case diff > 0:
		g[arg] = 1
	case diff < 0:
		g[arg] = -1
	}
	return g
}
