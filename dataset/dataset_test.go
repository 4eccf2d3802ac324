package dataset

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hupe1980/knngraph/metric"
	"github.com/hupe1980/knngraph/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantLen int
		wantErr bool
	}{
		{"Float32", [][]float32{{1, 2}, {3, 4}}, 2, false},
		{"Float64", [][]float64{{1, 2}, {3, 4}, {5, 6}}, 3, false},
		{"Matrix", mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}), 2, false},
		{"Strings", []string{"a", "b"}, 2, false},
		{"CSR", &CSR{NumRows: 1, NumCols: 2, Indptr: []int{0, 1}, Indices: []int32{1}, Data: []float32{3}}, 1, false},
		{"Ragged", [][]float32{{1, 2}, {3}}, 0, true},
		{"Empty", [][]float32{}, 0, true},
		{"BadCSR", &CSR{NumRows: 2, NumCols: 2, Indptr: []int{0, 1}}, 0, true},
		{"Nil", nil, 0, true},
		{"Unknown", 42, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := FromAny(tt.value)
			if tt.wantErr {
				var fe *FormatError
				require.ErrorAs(t, err, &fe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, in.Len())
		})
	}
}

func TestNormalizeDense(t *testing.T) {
	in, err := FromRows([][]float32{{1, 0, 2}, {0, 0, 3}})
	require.NoError(t, err)

	t.Run("ForceDense", func(t *testing.T) {
		set, err := Normalize(in, true)
		require.NoError(t, err)
		assert.Equal(t, vector.DenseVector, set.Type)
		assert.Equal(t, 3, set.Dim)
		assert.Equal(t, []float32{1, 0, 2}, set.Dense[0])
	})

	t.Run("Sparse", func(t *testing.T) {
		set, err := Normalize(in, false)
		require.NoError(t, err)
		assert.Equal(t, vector.SparseVector, set.Type)
		assert.Equal(t, 3, set.Dim)
		assert.Equal(t, []int32{0, 2}, set.Sparse[0].Indices)
		assert.Equal(t, []int32{2}, set.Sparse[1].Indices)
		assert.Equal(t, []float32{0, 0, 3}, set.DenseRow(1))
	})
}

func TestNormalizeCSR(t *testing.T) {
	c := &CSR{
		NumRows: 2,
		NumCols: 4,
		Indptr:  []int{0, 2, 3},
		Indices: []int32{0, 3, 1},
		Data:    []float32{1, 2, 5},
	}

	set, err := Normalize(c, false)
	require.NoError(t, err)
	assert.Equal(t, vector.SparseVector, set.Type)
	assert.Equal(t, []float32{1, 0, 0, 2}, set.DenseRow(0))

	set, err = Normalize(c, true)
	require.NoError(t, err)
	assert.Equal(t, vector.DenseVector, set.Type)
	assert.Equal(t, []float32{0, 5, 0, 0}, set.Dense[1])

	bad := &CSR{NumRows: 1, NumCols: 2, Indptr: []int{0, 2}, Indices: []int32{1, 0}, Data: []float32{1, 1}}
	_, err = Normalize(bad, false)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestNormalizeFrameIsTransposed(t *testing.T) {
	f := Frame{
		Names:   []string{"a", "b", "c"},
		Columns: [][]float32{{1, 2}, {3, 4}, {5, 6}},
	}

	set, err := Normalize(f, true)
	require.NoError(t, err)
	// Three columns yield three samples of dimension two.
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, 2, set.Dim)
	assert.Equal(t, []float32{3, 4}, set.Dense[1])
}

func TestNormalizeStrings(t *testing.T) {
	set, err := Normalize(Strings{"1 0 1", "abc"}, true)
	require.NoError(t, err)
	assert.Equal(t, vector.ObjectAsString, set.Type)
	assert.NotNil(t, set.Objects[0].Bits)
	assert.Nil(t, set.Objects[1].Bits)
}

func TestConvert(t *testing.T) {
	dense, err := vector.NewDenseSet([][]float32{{1, 0, 2.5}}, 3)
	require.NoError(t, err)
	sparse, err := vector.NewSparseSet([]vector.Sparse{{Indices: []int32{1}, Values: []float32{4}}}, 3)
	require.NoError(t, err)

	t.Run("None", func(t *testing.T) {
		out, err := Convert(dense, metric.ConvertNone)
		require.NoError(t, err)
		assert.Same(t, dense, out)
	})

	t.Run("Densify", func(t *testing.T) {
		out, err := Convert(sparse, metric.ConvertDensify)
		require.NoError(t, err)
		assert.Equal(t, vector.DenseVector, out.Type)
		assert.Equal(t, []float32{0, 4, 0}, out.Dense[0])
	})

	t.Run("Bits", func(t *testing.T) {
		out, err := Convert(dense, metric.ConvertBits)
		require.NoError(t, err)
		assert.Equal(t, "1 0 1", out.Objects[0].Text)
		assert.NotNil(t, out.Objects[0].Bits)
	})

	t.Run("Text", func(t *testing.T) {
		out, err := Convert(dense, metric.ConvertText)
		require.NoError(t, err)
		assert.Equal(t, "1 0 2.5", out.Objects[0].Text)
	})

	t.Run("DensifyObjects", func(t *testing.T) {
		_, err := Convert(vector.NewObjectSet([]string{"x"}), metric.ConvertDensify)
		assert.Error(t, err)
	})
}

func TestConform(t *testing.T) {
	fitted, err := vector.NewDenseSet([][]float32{{1, 2}}, 2)
	require.NoError(t, err)

	query, err := vector.NewSparseSet([]vector.Sparse{{Indices: []int32{1}, Values: []float32{7}}}, 2)
	require.NoError(t, err)

	out, err := Conform(query, fitted)
	require.NoError(t, err)
	assert.Equal(t, vector.DenseVector, out.Type)
	assert.Equal(t, []float32{0, 7}, out.Dense[0])

	back, err := Conform(fitted, query)
	require.NoError(t, err)
	assert.Equal(t, vector.SparseVector, back.Type)

	wide, err := vector.NewDenseSet([][]float32{{1, 2, 3}}, 3)
	require.NoError(t, err)
	_, err = Conform(wide, fitted)
	assert.Error(t, err)

	_, err = Conform(vector.NewObjectSet([]string{"a"}), fitted)
	assert.Error(t, err)
}

func TestFromArrow(t *testing.T) {
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "x", Type: arrow.PrimitiveTypes.Float64},
		{Name: "y", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	b.Field(0).(*array.Float64Builder).AppendValues([]float64{1.5, 2.5}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{3, 4}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	f, err := FromArrow(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, f.Names)
	assert.Equal(t, []float32{1.5, 2.5}, f.Columns[0])
	assert.Equal(t, []float32{3, 4}, f.Columns[1])

	in, err := FromAny(rec)
	require.NoError(t, err)
	assert.Equal(t, 2, in.Len())
}

func TestFromArrowVectors(t *testing.T) {
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "vector", Type: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float32)},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	lb := b.Field(0).(*array.FixedSizeListBuilder)
	vb := lb.ValueBuilder().(*array.Float32Builder)
	for _, row := range [][]float32{{1, 2}, {3, 4}, {5, 6}} {
		lb.Append(true)
		vb.AppendValues(row, nil)
	}
	rec := b.NewRecord()
	defer rec.Release()

	d, err := FromArrowVectors(rec, "vector")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Dim)
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}, {5, 6}}, d.Rows)

	_, err = FromArrowVectors(rec, "missing")
	assert.Error(t, err)
}
