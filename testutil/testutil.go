package testutil

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/vector"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	vectors := r.GaussianVectors(num, dimensions)
	for _, v := range vectors {
		distance.NormalizeL2InPlace(v)
	}
	return vectors
}

// ClusteredVectors generates vectors clustered around random centroids.
// Useful for testing ANN index performance on non-uniform data.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) [][]float32 {
	centroids := r.UnitVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)

	for i := range num {
		centroid := centroids[i%clusters]
		vec := data[i*dim : (i+1)*dim]
		for j := range dim {
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
	}

	return vectors
}

// SparseVectors generates sparse vectors over dim features where each
// feature is present with probability density. Every vector holds at least
// one feature.
func (r *RNG) SparseVectors(num, dim int, density float64) []vector.Sparse {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]vector.Sparse, num)
	for i := range out {
		var s vector.Sparse
		for j := 0; j < dim; j++ {
			if r.rand.Float64() < density {
				s.Indices = append(s.Indices, int32(j))
				s.Values = append(s.Values, r.rand.Float32()+0.1)
			}
		}
		if len(s.Indices) == 0 {
			s.Indices = []int32{int32(r.rand.Intn(dim))}
			s.Values = []float32{1}
		}
		out[i] = s
	}
	return out
}

// BitStrings generates whitespace separated 0/1 strings of length bits.
func (r *RNG) BitStrings(num, bits int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, num)
	var sb strings.Builder
	for i := range out {
		sb.Reset()
		for j := 0; j < bits; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(byte('0' + r.rand.Intn(2)))
		}
		out[i] = sb.String()
	}
	return out
}

// Words generates random lowercase words with lengths in [minLen, maxLen].
func (r *RNG) Words(num, minLen, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, num)
	buf := make([]byte, maxLen)
	for i := range out {
		n := minLen + r.rand.Intn(maxLen-minLen+1)
		for j := 0; j < n; j++ {
			buf[j] = byte('a' + r.rand.Intn(26))
		}
		out[i] = string(buf[:n])
	}
	return out
}

// ComputeRecall computes the mean recall of approximate neighbor ID lists
// against ground truth lists of the same shape.
func ComputeRecall(groundTruth, approximate [][]uint32) float64 {
	if len(groundTruth) == 0 {
		if len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	var sum float64
	for q := range groundTruth {
		truth := groundTruth[q]
		if len(truth) == 0 {
			sum++
			continue
		}
		truthSet := make(map[uint32]struct{}, len(truth))
		for _, id := range truth {
			truthSet[id] = struct{}{}
		}
		hits := 0
		if q < len(approximate) {
			for _, id := range approximate[q] {
				if _, ok := truthSet[id]; ok {
					hits++
				}
			}
		}
		sum += float64(hits) / float64(len(truth))
	}
	return sum / float64(len(groundTruth))
}
