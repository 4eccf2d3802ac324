package metric

import (
	"testing"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, m := range All() {
		got, err := Parse(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := Parse("manhattan")
	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.Unknown)
	assert.Contains(t, err.Error(), "manhattan")
}

func TestResolve(t *testing.T) {
	tests := []struct {
		metric     Metric
		dt         vector.DataType
		space      string
		resultType vector.DataType
		conversion Conversion
	}{
		{SqEuclidean, vector.DenseVector, distance.SpaceL2, vector.DenseVector, ConvertNone},
		{SqEuclidean, vector.SparseVector, distance.SpaceL2Sparse, vector.SparseVector, ConvertNone},
		{Euclidean, vector.DenseVector, distance.SpaceL2, vector.DenseVector, ConvertNone},
		{Cosine, vector.DenseVector, distance.SpaceCosine, vector.DenseVector, ConvertNone},
		{Cosine, vector.SparseVector, distance.SpaceCosineSparse, vector.SparseVector, ConvertNone},
		{Lp, vector.SparseVector, distance.SpaceLpSparse, vector.SparseVector, ConvertNone},
		{Linf, vector.DenseVector, distance.SpaceLinf, vector.DenseVector, ConvertNone},
		{NegDotProd, vector.SparseVector, distance.SpaceNegDotSparse, vector.SparseVector, ConvertNone},
		{JensenShannon, vector.DenseVector, distance.SpaceJensenShannon, vector.DenseVector, ConvertNone},
		{JensenShannon, vector.SparseVector, distance.SpaceJensenShannon, vector.DenseVector, ConvertDensify},
		{Levenshtein, vector.ObjectAsString, distance.SpaceLevenshtein, vector.ObjectAsString, ConvertNone},
		{Levenshtein, vector.DenseVector, distance.SpaceLevenshtein, vector.ObjectAsString, ConvertText},
		{Hamming, vector.SparseVector, distance.SpaceBitHamming, vector.ObjectAsString, ConvertBits},
		{Jaccard, vector.DenseVector, distance.SpaceBitJaccard, vector.ObjectAsString, ConvertBits},
		{CosineSparse, vector.SparseVector, distance.SpaceCosineSparse, vector.SparseVector, ConvertNone},
		{JaccardSparse, vector.SparseVector, distance.SpaceJaccardSparse, vector.SparseVector, ConvertNone},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String()+"/"+tt.dt.String(), func(t *testing.T) {
			res, err := tt.metric.Resolve(tt.dt)
			require.NoError(t, err)
			assert.Equal(t, tt.metric, res.Metric)
			assert.Equal(t, tt.space, res.Space)
			assert.Equal(t, tt.resultType, res.DataType)
			assert.Equal(t, tt.conversion, res.Conversion)
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	tests := []struct {
		metric Metric
		dt     vector.DataType
	}{
		{CosineSparse, vector.DenseVector},
		{JaccardSparse, vector.DenseVector},
		{Euclidean, vector.ObjectAsString},
		{JensenShannon, vector.ObjectAsString},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			_, err := tt.metric.Resolve(tt.dt)
			var ue *UnsupportedError
			require.ErrorAs(t, err, &ue)
			assert.False(t, ue.Unknown)
			assert.Equal(t, tt.dt, ue.DataType)
		})
	}

	_, err := Metric(99).Resolve(vector.DenseVector)
	assert.Error(t, err)
}

// Every registered metric resolves for at least one data type, and every
// resolved space exists.
func TestRegistryTotality(t *testing.T) {
	types := []vector.DataType{vector.DenseVector, vector.SparseVector, vector.ObjectAsString}
	for _, m := range All() {
		resolved := 0
		for _, dt := range types {
			res, err := m.Resolve(dt)
			if err != nil {
				continue
			}
			resolved++
			sp, err := distance.Lookup(res.Space, distance.Params{P: 2})
			require.NoError(t, err, "metric %s", m)
			assert.Equal(t, res.DataType, sp.DataType(), "metric %s", m)
		}
		assert.Positive(t, resolved, "metric %s", m)
	}
}

func TestHasGradient(t *testing.T) {
	with := map[Metric]bool{SqEuclidean: true, Euclidean: true, Cosine: true, Linf: true}
	for _, m := range All() {
		assert.Equal(t, with[m], m.HasGradient(), "metric %s", m)
	}
	assert.True(t, SqEuclidean.Squared())
	assert.False(t, Euclidean.Squared())
	assert.True(t, Hamming.IsString())
	assert.False(t, Cosine.IsString())
}
