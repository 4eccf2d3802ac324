package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hupe1980/knngraph/codec"
	"github.com/hupe1980/knngraph/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *CSR {
	t.Helper()
	g, err := Assemble(
		[][]uint32{{0, 2}, {1, 0}, {2, 1}},
		[][]float32{{0, 1.5}, {0, 0.5}, {0, 2}},
		3,
	)
	require.NoError(t, err)
	return g
}

func TestAssemble(t *testing.T) {
	g := sample(t)

	assert.Equal(t, 3, g.Rows)
	assert.Equal(t, 3, g.Cols)
	assert.Equal(t, []int{0, 2, 4, 6}, g.Indptr)
	assert.Equal(t, []uint32{0, 2, 1, 0, 2, 1}, g.Indices)
	assert.Equal(t, 6, g.NNZ())

	cols, vals := g.Row(1)
	assert.Equal(t, []uint32{1, 0}, cols)
	assert.Equal(t, []float32{0, 0.5}, vals)
}

func TestIndptrSpacing(t *testing.T) {
	const rows, k = 17, 5
	ids := make([][]uint32, rows)
	dists := make([][]float32, rows)
	for i := range ids {
		ids[i] = make([]uint32, k)
		dists[i] = make([]float32, k)
		for j := range ids[i] {
			ids[i][j] = uint32((i + j) % rows)
			dists[i][j] = float32(j)
		}
	}

	g, err := Assemble(ids, dists, rows)
	require.NoError(t, err)
	for i := 0; i < rows; i++ {
		assert.Equal(t, k, g.Indptr[i+1]-g.Indptr[i])
	}
}

func TestAssembleErrors(t *testing.T) {
	_, err := Assemble([][]uint32{{0}}, nil, 1)
	assert.ErrorIs(t, err, ErrShape)

	_, err = Assemble([][]uint32{{0, 1}, {0}}, [][]float32{{0, 1}, {0}}, 2)
	assert.ErrorIs(t, err, ErrShape)

	_, err = Assemble([][]uint32{{3}}, [][]float32{{1}}, 2)
	assert.ErrorIs(t, err, ErrShape)

	g, err := Assemble(nil, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, g.Indptr)
}

func TestFromNeighbors(t *testing.T) {
	g, err := FromNeighbors([]index.Neighbors{
		{{ID: 0, Distance: 0}, {ID: 1, Distance: 1}},
		{{ID: 1, Distance: 0}, {ID: 0, Distance: 1}},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {1, 0}}, g.Dense())
}

func TestFind(t *testing.T) {
	g := sample(t)

	assert.Equal(t, []Triplet{
		{Row: 0, Col: 2, Value: 1.5},
		{Row: 1, Col: 0, Value: 0.5},
		{Row: 2, Col: 1, Value: 2},
	}, g.Find())
}

func TestParquetRoundTrip(t *testing.T) {
	g := sample(t)

	var buf bytes.Buffer
	require.NoError(t, g.WriteParquet(&buf))

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestJSONRoundTrip(t *testing.T) {
	g := sample(t)

	for _, c := range []codec.Codec{nil, codec.JSON{}} {
		var buf bytes.Buffer
		require.NoError(t, g.WriteJSON(&buf, c))
		assert.Contains(t, buf.String(), `"shape":[3,3]`)

		got, err := ReadJSON(buf.Bytes(), c)
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}

	_, err := ReadJSON([]byte(`{"shape":[2,2],"indptr":[0],"indices":[],"data":[]}`), nil)
	assert.ErrorIs(t, err, ErrShape)
}

func TestWriteMatrixMarket(t *testing.T) {
	g := sample(t)

	var buf bytes.Buffer
	require.NoError(t, g.WriteMatrixMarket(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "%%MatrixMarket matrix coordinate real general", lines[0])
	assert.Equal(t, "3 3 6", lines[1])
	assert.Equal(t, "1 3 1.5", lines[3])
}
