package index

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex is a minimal Index used to exercise the registry and helpers.
type stubIndex struct {
	space distance.Space
	n     int
}

func (s *stubIndex) Method() string                           { return "stub" }
func (s *stubIndex) Space() distance.Space                    { return s.space }
func (s *stubIndex) AddBatch(data *vector.Set) error          { s.n = data.Len(); return nil }
func (s *stubIndex) Build(context.Context, IndexParams) error { return nil }
func (s *stubIndex) Len() int                                 { return s.n }
func (s *stubIndex) KNNQueryBatch(context.Context, *vector.Set, int, QueryParams, int) ([]Neighbors, error) {
	return nil, nil
}

func l2Space(t *testing.T) distance.Space {
	t.Helper()
	sp, err := distance.Lookup(distance.SpaceL2, distance.Params{})
	require.NoError(t, err)
	return sp
}

func TestRegistry(t *testing.T) {
	Register("stub", func(space distance.Space) (Index, error) {
		if space.DataType() != vector.DenseVector {
			return nil, &UnsupportedSpaceError{Method: "stub", Space: space.Name()}
		}
		return &stubIndex{space: space}, nil
	})

	idx, err := New("stub", l2Space(t))
	require.NoError(t, err)
	assert.Equal(t, "stub", idx.Method())
	assert.Contains(t, Methods(), "stub")

	_, err = New("napp", l2Space(t))
	assert.ErrorIs(t, err, ErrUnknownMethod)

	lev, err := distance.Lookup(distance.SpaceLevenshtein, distance.Params{})
	require.NoError(t, err)
	_, err = New("stub", lev)
	var use *UnsupportedSpaceError
	assert.ErrorAs(t, err, &use)
}

func TestNeighborsSort(t *testing.T) {
	n := Neighbors{{ID: 3, Distance: 1}, {ID: 1, Distance: 2}, {ID: 0, Distance: 1}}
	n.Sort()
	assert.Equal(t, []uint32{0, 3, 1}, n.IDs())
	assert.Equal(t, []float32{1, 1, 2}, n.Distances())
}

func TestBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("PreservesOrder", func(t *testing.T) {
		res, err := Batch(ctx, 100, 8, func(row int) (Neighbors, error) {
			return Neighbors{{ID: uint32(row)}}, nil
		})
		require.NoError(t, err)
		require.Len(t, res, 100)
		for i, r := range res {
			assert.Equal(t, uint32(i), r[0].ID)
		}
	})

	t.Run("DefaultThreads", func(t *testing.T) {
		res, err := Batch(ctx, 3, -1, func(row int) (Neighbors, error) {
			return Neighbors{}, nil
		})
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("RowError", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Batch(ctx, 10, 1, func(row int) (Neighbors, error) {
			if row == 4 {
				return nil, boom
			}
			return Neighbors{}, nil
		})
		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, 4, qe.Row)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Batch(cctx, 10, 2, func(row int) (Neighbors, error) {
			return Neighbors{}, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckQuery(t *testing.T) {
	idx := &stubIndex{space: l2Space(t), n: 3}
	dense, err := vector.NewDenseSet([][]float32{{1, 2}}, 2)
	require.NoError(t, err)

	assert.NoError(t, CheckQuery(idx, dense, 3))
	assert.ErrorIs(t, CheckQuery(idx, dense, 0), ErrInvalidK)

	var qe *QueryError
	assert.ErrorAs(t, CheckQuery(idx, dense, 4), &qe)

	var dte *DataTypeError
	assert.ErrorAs(t, CheckQuery(idx, vector.NewObjectSet([]string{"x"}), 1), &dte)

	assert.ErrorIs(t, CheckData(idx.space, &vector.Set{}), ErrEmptyData)
}
