// Package vector defines the point representations shared by spaces, indexes
// and the data normalizer.
//
// A point is one of three data types, mirroring the representations an ANN
// engine can index:
//
//   - DenseVector: a fixed-length []float32
//   - SparseVector: sorted feature indices with values over a fixed universe
//   - ObjectAsString: an opaque string (edit distance, bit sets)
package vector

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// DataType is the representation a space operates on.
type DataType int

const (
	DenseVector DataType = iota
	SparseVector
	ObjectAsString
)

func (t DataType) String() string {
	switch t {
	case DenseVector:
		return "dense"
	case SparseVector:
		return "sparse"
	case ObjectAsString:
		return "object"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Sparse is a sparse vector. Indices are strictly increasing.
type Sparse struct {
	Indices []int32
	Values  []float32
}

// Len returns the number of stored (non-zero) entries.
func (s Sparse) Len() int { return len(s.Indices) }

// Dense materializes s into a dense vector of length dim.
// Entries with an index >= dim are dropped.
func (s Sparse) Dense(dim int) []float32 {
	out := make([]float32, dim)
	s.DenseInto(out)
	return out
}

// DenseInto writes s into dst, which must be zeroed by the caller.
func (s Sparse) DenseInto(dst []float32) {
	for i, idx := range s.Indices {
		if int(idx) < len(dst) {
			dst[idx] = s.Values[i]
		}
	}
}

// SparseFromDense returns the non-zero entries of v.
func SparseFromDense(v []float32) Sparse {
	var s Sparse
	for i, x := range v {
		if x != 0 {
			s.Indices = append(s.Indices, int32(i))
			s.Values = append(s.Values, x)
		}
	}
	return s
}

// Object is a string point. When the text is a whitespace separated
// sequence of 0/1 tokens, Bits holds the parsed bit vector.
type Object struct {
	Text string
	Bits *bitset.BitSet
}

// NewObject creates an object point and parses its bit form if possible.
func NewObject(text string) Object {
	return Object{Text: text, Bits: parseBits(text)}
}

func parseBits(text string) *bitset.BitSet {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	bs := bitset.New(uint(len(fields)))
	for i, f := range fields {
		switch f {
		case "0":
		case "1":
			bs.Set(uint(i))
		default:
			return nil
		}
	}
	return bs
}
