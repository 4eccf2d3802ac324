package vector

import "fmt"

// Set is an ordered, immutable collection of points of a single data type.
//
// Exactly one of Dense, Sparse or Objects is populated, selected by Type.
// Dim is the vector length for dense points and the feature universe size
// for sparse points; it is zero for objects.
type Set struct {
	Type    DataType
	Dim     int
	Dense   [][]float32
	Sparse  []Sparse
	Objects []Object
}

// NewDenseSet creates a dense set. All rows must have length dim.
func NewDenseSet(rows [][]float32, dim int) (*Set, error) {
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("row %d: length %d, want %d", i, len(r), dim)
		}
	}
	return &Set{Type: DenseVector, Dim: dim, Dense: rows}, nil
}

// NewSparseSet creates a sparse set over a universe of dim features.
func NewSparseSet(rows []Sparse, dim int) (*Set, error) {
	for i, r := range rows {
		if len(r.Indices) != len(r.Values) {
			return nil, fmt.Errorf("row %d: %d indices but %d values", i, len(r.Indices), len(r.Values))
		}
		prev := int32(-1)
		for _, idx := range r.Indices {
			if idx <= prev {
				return nil, fmt.Errorf("row %d: indices not strictly increasing", i)
			}
			if int(idx) >= dim {
				return nil, fmt.Errorf("row %d: index %d out of range [0,%d)", i, idx, dim)
			}
			prev = idx
		}
	}
	return &Set{Type: SparseVector, Dim: dim, Sparse: rows}, nil
}

// NewObjectSet creates an object set from raw strings.
func NewObjectSet(texts []string) *Set {
	objs := make([]Object, len(texts))
	for i, t := range texts {
		objs[i] = NewObject(t)
	}
	return &Set{Type: ObjectAsString, Objects: objs}
}

// Len returns the number of points.
func (s *Set) Len() int {
	switch s.Type {
	case DenseVector:
		return len(s.Dense)
	case SparseVector:
		return len(s.Sparse)
	default:
		return len(s.Objects)
	}
}

// DenseRow returns point i as a dense vector. Sparse points are
// materialized into a fresh slice; objects return nil.
func (s *Set) DenseRow(i int) []float32 {
	switch s.Type {
	case DenseVector:
		return s.Dense[i]
	case SparseVector:
		return s.Sparse[i].Dense(s.Dim)
	default:
		return nil
	}
}

// Subset returns a set holding the points at the given positions.
// Rows are shared with s, not copied.
func (s *Set) Subset(rows []int) *Set {
	out := &Set{Type: s.Type, Dim: s.Dim}
	switch s.Type {
	case DenseVector:
		out.Dense = make([][]float32, len(rows))
		for i, r := range rows {
			out.Dense[i] = s.Dense[r]
		}
	case SparseVector:
		out.Sparse = make([]Sparse, len(rows))
		for i, r := range rows {
			out.Sparse[i] = s.Sparse[r]
		}
	default:
		out.Objects = make([]Object, len(rows))
		for i, r := range rows {
			out.Objects[i] = s.Objects[r]
		}
	}
	return out
}
