// Package dataset normalizes caller data into vector sets.
//
// Input is a closed set of variants: Dense, CSR, Frame and Strings. The
// dynamic entry point FromAny maps loosely typed values onto a variant once,
// so the rest of the pipeline never inspects concrete input types again.
package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"gonum.org/v1/gonum/mat"
)

// Input is one of Dense, *CSR, Frame or Strings.
type Input interface {
	// Len returns the number of samples the input yields after normalization.
	Len() int

	isInput()
}

// Dense is a row-major matrix of samples.
type Dense struct {
	Rows [][]float32
	Dim  int
}

func (Dense) isInput() {}

// Len implements Input.
func (d Dense) Len() int { return len(d.Rows) }

// FromRows creates a Dense input. Rows must all have the same length.
func FromRows(rows [][]float32) (Dense, error) {
	if len(rows) == 0 {
		return Dense{}, &FormatError{Reason: "empty input"}
	}
	dim := len(rows[0])
	for i, r := range rows {
		if len(r) != dim {
			return Dense{}, &FormatError{Reason: fmt.Sprintf("ragged rows: row %d has %d columns, want %d", i, len(r), dim)}
		}
	}
	return Dense{Rows: rows, Dim: dim}, nil
}

// FromFloat64 creates a Dense input from float64 rows.
func FromFloat64(rows [][]float64) (Dense, error) {
	out := make([][]float32, len(rows))
	for i, r := range rows {
		out[i] = make([]float32, len(r))
		for j, v := range r {
			out[i][j] = float32(v)
		}
	}
	return FromRows(out)
}

// FromMatrix creates a Dense input from a gonum matrix.
func FromMatrix(m mat.Matrix) (Dense, error) {
	r, c := m.Dims()
	rows := make([][]float32, r)
	for i := range rows {
		rows[i] = make([]float32, c)
		for j := 0; j < c; j++ {
			rows[i][j] = float32(m.At(i, j))
		}
	}
	return FromRows(rows)
}

// CSR is a compressed sparse row matrix.
type CSR struct {
	NumRows int
	NumCols int
	Indptr  []int
	Indices []int32
	Data    []float32
}

func (*CSR) isInput() {}

// Len implements Input.
func (c *CSR) Len() int { return c.NumRows }

// Validate checks the structural invariants of the matrix.
func (c *CSR) Validate() error {
	if c.NumRows <= 0 {
		return &FormatError{Reason: "empty input"}
	}
	if len(c.Indptr) != c.NumRows+1 {
		return &FormatError{Reason: fmt.Sprintf("indptr has length %d, want %d", len(c.Indptr), c.NumRows+1)}
	}
	if len(c.Indices) != len(c.Data) {
		return &FormatError{Reason: fmt.Sprintf("%d indices but %d values", len(c.Indices), len(c.Data))}
	}
	if c.Indptr[0] != 0 || c.Indptr[c.NumRows] != len(c.Data) {
		return &FormatError{Reason: "indptr does not span the data"}
	}
	for i := 0; i < c.NumRows; i++ {
		if c.Indptr[i+1] < c.Indptr[i] {
			return &FormatError{Reason: fmt.Sprintf("indptr decreases at row %d", i)}
		}
	}
	return nil
}

// NewCSR builds a CSR matrix from dense rows, keeping non-zero entries.
func NewCSR(d Dense) *CSR {
	c := &CSR{NumRows: len(d.Rows), NumCols: d.Dim, Indptr: make([]int, 1, len(d.Rows)+1)}
	for _, r := range d.Rows {
		for j, v := range r {
			if v != 0 {
				c.Indices = append(c.Indices, int32(j))
				c.Data = append(c.Data, v)
			}
		}
		c.Indptr = append(c.Indptr, len(c.Data))
	}
	return c
}

// Frame is a table of named numeric columns.
//
// Columns[c] holds the values of column c. Normalization transposes a
// frame: every column becomes one sample.
type Frame struct {
	Names   []string
	Columns [][]float32
}

func (Frame) isInput() {}

// Len implements Input.
func (f Frame) Len() int { return len(f.Columns) }

// Strings is a list of string objects.
type Strings []string

func (Strings) isInput() {}

// Len implements Input.
func (s Strings) Len() int { return len(s) }

// FromAny maps a dynamically typed value onto an Input variant.
//
// Supported values are the variants themselves, [][]float32, [][]float64,
// gonum matrices, Arrow records and []string.
func FromAny(v any) (Input, error) {
	switch x := v.(type) {
	case nil:
		return nil, &FormatError{Reason: "nil input"}
	case Dense:
		return x, nil
	case *CSR:
		if err := x.Validate(); err != nil {
			return nil, err
		}
		return x, nil
	case CSR:
		if err := x.Validate(); err != nil {
			return nil, err
		}
		return &x, nil
	case Frame:
		return x, nil
	case Strings:
		return x, nil
	case [][]float32:
		return FromRows(x)
	case [][]float64:
		return FromFloat64(x)
	case []string:
		return Strings(x), nil
	case mat.Matrix:
		return FromMatrix(x)
	case arrow.Record:
		return FromArrow(x)
	default:
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported input type %T", v)}
	}
}
