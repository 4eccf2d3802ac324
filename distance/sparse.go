package distance

import (
	"math"

	"github.com/hupe1980/knngraph/vector"
)

// SparseFunc is a distance function over sparse vectors.
type SparseFunc func(a, b vector.Sparse) float32

// SparseDot returns the dot product of two sparse vectors.
func SparseDot(a, b vector.Sparse) float32 {
	var sum float32
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// SparseNorm returns the L2 norm of a sparse vector.
func SparseNorm(a vector.Sparse) float32 {
	var sum float32
	for _, v := range a.Values {
		sum += v * v
	}
	return float32(math.Sqrt(float64(sum)))
}

// mergeDiff calls fn with the absolute coordinate difference for every
// feature present in a or b.
func mergeDiff(a, b vector.Sparse, fn func(d float64)) {
	i, j := 0, 0
	for i < len(a.Indices) || j < len(b.Indices) {
		switch {
		case j >= len(b.Indices) || (i < len(a.Indices) && a.Indices[i] < b.Indices[j]):
			fn(math.Abs(float64(a.Values[i])))
			i++
		case i >= len(a.Indices) || b.Indices[j] < a.Indices[i]:
			fn(math.Abs(float64(b.Values[j])))
			j++
		default:
			fn(math.Abs(float64(a.Values[i] - b.Values[j])))
			i++
			j++
		}
	}
}

// SparseL2 returns the Euclidean distance between sparse vectors.
func SparseL2(a, b vector.Sparse) float32 {
	var sum float64
	mergeDiff(a, b, func(d float64) { sum += d * d })
	return float32(math.Sqrt(sum))
}

// SparseL1 returns the Manhattan distance between sparse vectors.
func SparseL1(a, b vector.Sparse) float32 {
	var sum float64
	mergeDiff(a, b, func(d float64) { sum += d })
	return float32(sum)
}

// SparseLinf returns the Chebyshev distance between sparse vectors.
func SparseLinf(a, b vector.Sparse) float32 {
	var m float64
	mergeDiff(a, b, func(d float64) { m = math.Max(m, d) })
	return float32(m)
}

// SparseLp returns the Minkowski distance of order p over sparse vectors.
func SparseLp(p float64) SparseFunc {
	return func(a, b vector.Sparse) float32 {
		var sum float64
		mergeDiff(a, b, func(d float64) { sum += math.Pow(d, p) })
		return float32(math.Pow(sum, 1/p))
	}
}

// SparseCosine returns the cosine distance between sparse vectors.
func SparseCosine(a, b vector.Sparse) float32 {
	return cosineFromParts(SparseDot(a, b), SparseNorm(a), SparseNorm(b))
}

// SparseAngular returns the angle between sparse vectors in radians.
func SparseAngular(a, b vector.Sparse) float32 {
	return angularFromParts(SparseDot(a, b), SparseNorm(a), SparseNorm(b))
}

// SparseNegDot returns the negated sparse dot product.
func SparseNegDot(a, b vector.Sparse) float32 {
	return -SparseDot(a, b)
}

// SparseJaccard returns 1 - |A∩B|/|A∪B| over the sets of stored features.
func SparseJaccard(a, b vector.Sparse) float32 {
	inter := 0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			inter++
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	union := len(a.Indices) + len(b.Indices) - inter
	if union == 0 {
		return 0
	}
	return 1 - float32(inter)/float32(union)
}
