package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// FromArrow creates a Frame from an Arrow record. Every column must be a
// non-null float or integer column.
func FromArrow(rec arrow.Record) (Frame, error) {
	ncols := int(rec.NumCols())
	if ncols == 0 || rec.NumRows() == 0 {
		return Frame{}, &FormatError{Reason: "empty input"}
	}
	f := Frame{Names: make([]string, ncols), Columns: make([][]float32, ncols)}
	for c := 0; c < ncols; c++ {
		f.Names[c] = rec.ColumnName(c)
		col, err := numericColumn(rec.Column(c))
		if err != nil {
			return Frame{}, wrapFormat(fmt.Sprintf("column %q", f.Names[c]), err)
		}
		f.Columns[c] = col
	}
	return f, nil
}

// FromArrowVectors creates a Dense input from a fixed-size-list column of
// an Arrow record. Each list entry is one sample.
func FromArrowVectors(rec arrow.Record, column string) (Dense, error) {
	idx := rec.Schema().FieldIndices(column)
	if len(idx) == 0 {
		return Dense{}, &FormatError{Reason: fmt.Sprintf("column %q not found", column)}
	}
	list, ok := rec.Column(idx[0]).(*array.FixedSizeList)
	if !ok {
		return Dense{}, &FormatError{Reason: fmt.Sprintf("column %q is %s, want fixed_size_list", column, rec.Column(idx[0]).DataType())}
	}
	values, err := numericColumn(list.ListValues())
	if err != nil {
		return Dense{}, wrapFormat(fmt.Sprintf("column %q", column), err)
	}
	rows := make([][]float32, list.Len())
	for i := range rows {
		if list.IsNull(i) {
			return Dense{}, &FormatError{Reason: fmt.Sprintf("column %q: null vector at row %d", column, i)}
		}
		start, end := list.ValueOffsets(i)
		rows[i] = values[start:end:end]
	}
	return FromRows(rows)
}

func numericColumn(arr arrow.Array) ([]float32, error) {
	if arr.NullN() > 0 {
		return nil, fmt.Errorf("%d null values", arr.NullN())
	}
	out := make([]float32, arr.Len())
	switch a := arr.(type) {
	case *array.Float32:
		copy(out, a.Float32Values())
	case *array.Float64:
		for i, v := range a.Float64Values() {
			out[i] = float32(v)
		}
	case *array.Int32:
		for i, v := range a.Int32Values() {
			out[i] = float32(v)
		}
	case *array.Int64:
		for i, v := range a.Int64Values() {
			out[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("non-numeric type %s", arr.DataType())
	}
	return out, nil
}
