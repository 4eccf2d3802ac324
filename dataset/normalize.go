package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/knngraph/metric"
	"github.com/hupe1980/knngraph/vector"
)

// Normalize turns an input into a vector set.
//
// With forceDense, dense input stays dense and CSR input is materialized.
// Otherwise dense input is converted to sparse form and CSR passes through.
// A Frame is transposed first, so each of its columns becomes one sample.
// Strings always become object points.
func Normalize(in Input, forceDense bool) (*vector.Set, error) {
	if in == nil || in.Len() == 0 {
		return nil, &FormatError{Reason: "empty input"}
	}
	switch x := in.(type) {
	case Dense:
		d, err := FromRows(x.Rows)
		if err != nil {
			return nil, err
		}
		return normalizeDense(d, forceDense)
	case *CSR:
		if err := x.Validate(); err != nil {
			return nil, err
		}
		set, err := csrToSparse(x)
		if err != nil {
			return nil, err
		}
		if forceDense {
			return densify(set), nil
		}
		return set, nil
	case Frame:
		d, err := transpose(x)
		if err != nil {
			return nil, err
		}
		return normalizeDense(d, forceDense)
	case Strings:
		return vector.NewObjectSet(x), nil
	default:
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported input type %T", in)}
	}
}

func normalizeDense(d Dense, forceDense bool) (*vector.Set, error) {
	if forceDense {
		set, err := vector.NewDenseSet(d.Rows, d.Dim)
		if err != nil {
			return nil, wrapFormat("dense rows", err)
		}
		return set, nil
	}
	return csrToSparse(NewCSR(d))
}

func csrToSparse(c *CSR) (*vector.Set, error) {
	rows := make([]vector.Sparse, c.NumRows)
	for i := range rows {
		lo, hi := c.Indptr[i], c.Indptr[i+1]
		rows[i] = vector.Sparse{Indices: c.Indices[lo:hi:hi], Values: c.Data[lo:hi:hi]}
	}
	set, err := vector.NewSparseSet(rows, c.NumCols)
	if err != nil {
		return nil, wrapFormat("csr structure", err)
	}
	return set, nil
}

func transpose(f Frame) (Dense, error) {
	if len(f.Columns) == 0 {
		return Dense{}, &FormatError{Reason: "empty input"}
	}
	n := len(f.Columns[0])
	for c, col := range f.Columns {
		if len(col) != n {
			return Dense{}, &FormatError{Reason: fmt.Sprintf("column %d has %d values, want %d", c, len(col), n)}
		}
	}
	// Column c of the frame becomes sample c.
	return FromRows(f.Columns)
}

func densify(s *vector.Set) *vector.Set {
	rows := make([][]float32, s.Len())
	for i := range rows {
		rows[i] = s.DenseRow(i)
	}
	return &vector.Set{Type: vector.DenseVector, Dim: s.Dim, Dense: rows}
}

func sparsify(s *vector.Set) *vector.Set {
	rows := make([]vector.Sparse, len(s.Dense))
	for i, r := range s.Dense {
		rows[i] = vector.SparseFromDense(r)
	}
	return &vector.Set{Type: vector.SparseVector, Dim: s.Dim, Sparse: rows}
}

// Convert applies a registry conversion to a normalized set.
func Convert(s *vector.Set, conv metric.Conversion) (*vector.Set, error) {
	switch conv {
	case metric.ConvertNone:
		return s, nil
	case metric.ConvertDensify:
		if s.Type == vector.ObjectAsString {
			return nil, &FormatError{Reason: "cannot densify string objects"}
		}
		if s.Type == vector.DenseVector {
			return s, nil
		}
		return densify(s), nil
	case metric.ConvertBits, metric.ConvertText:
		if s.Type == vector.ObjectAsString {
			return s, nil
		}
		texts := make([]string, s.Len())
		for i := range texts {
			texts[i] = stringify(s.DenseRow(i), conv == metric.ConvertBits)
		}
		return vector.NewObjectSet(texts), nil
	default:
		return nil, &FormatError{Reason: fmt.Sprintf("unknown conversion %s", conv)}
	}
}

func stringify(row []float32, bits bool) string {
	var sb strings.Builder
	for j, v := range row {
		if j > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case !bits:
			sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		case v != 0:
			sb.WriteByte('1')
		default:
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Conform brings a normalized and converted query set into the
// representation of the fitted set and checks its dimension.
func Conform(query, fitted *vector.Set) (*vector.Set, error) {
	if query.Type == vector.ObjectAsString || fitted.Type == vector.ObjectAsString {
		if query.Type != fitted.Type {
			return nil, &FormatError{Reason: fmt.Sprintf("query data is %s, index holds %s", query.Type, fitted.Type)}
		}
		return query, nil
	}
	if query.Dim != fitted.Dim {
		return nil, &FormatError{Reason: fmt.Sprintf("query dimension %d, index dimension %d", query.Dim, fitted.Dim)}
	}
	switch {
	case query.Type == fitted.Type:
		return query, nil
	case fitted.Type == vector.DenseVector:
		return densify(query), nil
	default:
		return sparsify(query), nil
	}
}
