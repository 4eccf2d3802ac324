package vptree

import (
	"context"
	"testing"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/index/flat"
	"github.com/hupe1980/knngraph/testutil"
	"github.com/hupe1980/knngraph/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(t *testing.T, name string) distance.Space {
	t.Helper()
	sp, err := distance.Lookup(name, distance.Params{})
	require.NoError(t, err)
	return sp
}

func assertExact(t *testing.T, sp distance.Space, data *vector.Set, k int, params index.IndexParams) {
	t.Helper()
	tree, err := New(sp)
	require.NoError(t, err)
	require.NoError(t, tree.AddBatch(data))
	require.NoError(t, tree.Build(context.Background(), params))

	f := flat.New(sp)
	require.NoError(t, f.AddBatch(data))
	require.NoError(t, f.Build(context.Background(), index.IndexParams{}))

	got, err := tree.KNNQueryBatch(context.Background(), data, k, index.QueryParams{}, 4)
	require.NoError(t, err)
	want, err := f.KNNQueryBatch(context.Background(), data, k, index.QueryParams{}, 4)
	require.NoError(t, err)

	for i := range want {
		assert.InDeltaSlice(t, want[i].Distances(), got[i].Distances(), 1e-4, "row %d", i)
	}
}

func TestExactDense(t *testing.T) {
	data, err := vector.NewDenseSet(testutil.NewRNG(21).GaussianVectors(400, 6), 6)
	require.NoError(t, err)

	tests := []struct {
		name   string
		space  string
		params index.IndexParams
	}{
		{"L2", distance.SpaceL2, index.IndexParams{}},
		{"L1Parallel", distance.SpaceL1, index.IndexParams{IndexThreadQty: 8, BucketSize: 8}},
		{"Linf", distance.SpaceLinf, index.IndexParams{BucketSize: 1}},
		{"Angular", distance.SpaceAngular, index.IndexParams{IndexThreadQty: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertExact(t, lookup(t, tt.space), data, 7, tt.params)
		})
	}
}

func TestExactSparse(t *testing.T) {
	data, err := vector.NewSparseSet(testutil.NewRNG(22).SparseVectors(200, 30, 0.2), 30)
	require.NoError(t, err)
	assertExact(t, lookup(t, distance.SpaceL2Sparse), data, 5, index.IndexParams{BucketSize: 4})
}

func TestExactStrings(t *testing.T) {
	data := vector.NewObjectSet(testutil.NewRNG(23).Words(150, 2, 7))
	assertExact(t, lookup(t, distance.SpaceLevenshtein), data, 4, index.IndexParams{BucketSize: 4})
}

func TestRejectsNonMetric(t *testing.T) {
	for _, name := range []string{distance.SpaceCosine, distance.SpaceNegDot} {
		_, err := index.New(index.MethodVPTree, lookup(t, name))
		var use *index.UnsupportedSpaceError
		assert.ErrorAs(t, err, &use, name)
	}
}

func TestLifecycle(t *testing.T) {
	tree, err := New(lookup(t, distance.SpaceL2))
	require.NoError(t, err)
	assert.ErrorIs(t, tree.Build(context.Background(), index.IndexParams{}), index.ErrEmptyData)

	data, err := vector.NewDenseSet([][]float32{{0}, {1}, {2}}, 1)
	require.NoError(t, err)
	_, err = tree.KNNQueryBatch(context.Background(), data, 1, index.QueryParams{}, 1)
	assert.ErrorIs(t, err, index.ErrNotBuilt)

	require.NoError(t, tree.AddBatch(data))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tree.Build(ctx, index.IndexParams{BucketSize: 1}), context.Canceled)
}
