// Package distance provides the concrete spaces an index can be built over.
// Dense kernels use github.com/viterin/vek, which dispatches to AVX2 code
// when the CPU supports it.
package distance

import (
	"math"
	"slices"

	"github.com/viterin/vek/vek32"
)

// Func is a distance function over dense vectors.
type Func func(a, b []float32) float32

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return vek32.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return vek32.Distance(a, b)
}

// L1 calculates the Manhattan distance between two vectors.
func L1(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return vek32.ManhattanDistance(a, b)
}

// Linf calculates the Chebyshev (maximum coordinate) distance.
func Linf(a, b []float32) float32 {
	var m float32
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}

// Lp returns the Minkowski distance of order p.
func Lp(p float64) Func {
	return func(a, b []float32) float32 {
		var sum float64
		for i := range a {
			sum += math.Pow(math.Abs(float64(a[i]-b[i])), p)
		}
		return float32(math.Pow(sum, 1/p))
	}
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return vek32.Norm(v)
}

// Cosine returns the cosine distance 1 - cos(a, b).
// Two zero vectors are at distance 0; a zero vector and a non-zero one at 1.
func Cosine(a, b []float32) float32 {
	return cosineFromParts(Dot(a, b), Norm(a), Norm(b))
}

// Angular returns the angle between a and b in radians.
func Angular(a, b []float32) float32 {
	return angularFromParts(Dot(a, b), Norm(a), Norm(b))
}

// NegDot returns the negated dot product, so smaller is more similar.
func NegDot(a, b []float32) float32 {
	return -Dot(a, b)
}

// JensenShannon returns the square root of the Jensen-Shannon divergence
// between two non-negative vectors. Negative entries are treated as zero.
func JensenShannon(a, b []float32) float32 {
	var sum float64
	for i := range a {
		p := math.Max(float64(a[i]), 0)
		q := math.Max(float64(b[i]), 0)
		m := (p + q) / 2
		if p > 0 {
			sum += p * math.Log(p/m)
		}
		if q > 0 {
			sum += q * math.Log(q/m)
		}
	}
	if sum <= 0 {
		return 0
	}
	return float32(math.Sqrt(sum / 2))
}

func cosineFromParts(dot, na, nb float32) float32 {
	if na == 0 || nb == 0 {
		if na == 0 && nb == 0 {
			return 0
		}
		return 1
	}
	d := 1 - dot/(na*nb)
	if d < 0 {
		return 0
	}
	return d
}

func angularFromParts(dot, na, nb float32) float32 {
	if na == 0 || nb == 0 {
		if na == 0 && nb == 0 {
			return 0
		}
		return math.Pi / 2
	}
	c := float64(dot / (na * nb))
	c = math.Max(-1, math.Min(1, c))
	return float32(math.Acos(c))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	n := Norm(v)
	if n == 0 {
		return false
	}
	inv := 1 / n
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}
