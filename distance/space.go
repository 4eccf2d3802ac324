package distance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/knngraph/vector"
)

// Space identifiers. The names follow the nmslib conventions so that
// configurations carry over unchanged.
const (
	SpaceL2            = "l2"
	SpaceL2Sparse      = "l2_sparse"
	SpaceCosine        = "cosinesimil"
	SpaceCosineSparse  = "cosinesimil_sparse_fast"
	SpaceLp            = "lp"
	SpaceLpSparse      = "lp_sparse"
	SpaceL1            = "l1"
	SpaceL1Sparse      = "l1_sparse"
	SpaceLinf          = "linf"
	SpaceLinfSparse    = "linf_sparse"
	SpaceAngular       = "angulardist"
	SpaceAngularSparse = "angulardist_sparse_fast"
	SpaceNegDot        = "negdotprod"
	SpaceNegDotSparse  = "negdotprod_sparse_fast"
	SpaceJaccardSparse = "jaccard_sparse"
	SpaceJensenShannon = "jsmetrfastapprox"
	SpaceLevenshtein   = "leven"
	SpaceBitHamming    = "bit_hamming"
	SpaceBitJaccard    = "bit_jaccard"
)

var (
	// ErrUnknownSpace is returned by Lookup for an unregistered space name.
	ErrUnknownSpace = errors.New("unknown space")

	// ErrInvalidP is returned when an Lp space is requested without a positive exponent.
	ErrInvalidP = errors.New("lp space requires p > 0")
)

// Params holds space parameters.
type Params struct {
	// P is the exponent of the lp spaces.
	P float64
}

// Space is a named distance over one data type.
// It is a value type and safe for concurrent use.
type Space struct {
	name     string
	dataType vector.DataType
	isMetric bool
	dense    Func
	sparse   SparseFunc
	object   ObjectFunc
}

// Name returns the space identifier.
func (s Space) Name() string { return s.name }

// DataType returns the point representation the space operates on.
func (s Space) DataType() vector.DataType { return s.dataType }

// IsMetric reports whether the distance satisfies the triangle inequality.
func (s Space) IsMetric() bool { return s.isMetric }

// DenseFunc returns the dense distance function, or nil for non-dense spaces.
func (s Space) DenseFunc() Func { return s.dense }

// Distance returns the distance between point i of a and point j of b.
// Both sets must have the space's data type.
func (s Space) Distance(a *vector.Set, i int, b *vector.Set, j int) float32 {
	switch s.dataType {
	case vector.DenseVector:
		return s.dense(a.Dense[i], b.Dense[j])
	case vector.SparseVector:
		return s.sparse(a.Sparse[i], b.Sparse[j])
	default:
		return s.object(a.Objects[i], b.Objects[j])
	}
}

func (s Space) String() string { return s.name }

// Lookup returns the space registered under name.
func Lookup(name string, params Params) (Space, error) {
	switch name {
	case SpaceLp:
		if params.P <= 0 {
			return Space{}, ErrInvalidP
		}
		return Space{name: name, dataType: vector.DenseVector, isMetric: params.P >= 1, dense: Lp(params.P)}, nil
	case SpaceLpSparse:
		if params.P <= 0 {
			return Space{}, ErrInvalidP
		}
		return Space{name: name, dataType: vector.SparseVector, isMetric: params.P >= 1, sparse: SparseLp(params.P)}, nil
	}

	s, ok := spaces[name]
	if !ok {
		return Space{}, fmt.Errorf("%w: %q", ErrUnknownSpace, name)
	}
	return s, nil
}

// Names returns all space identifiers in lexical order, including the
// parameterized ones.
func Names() []string {
	names := []string{SpaceLp, SpaceLpSparse}
	for n := range spaces {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

var spaces = map[string]Space{
	SpaceL2:            {name: SpaceL2, dataType: vector.DenseVector, isMetric: true, dense: L2},
	SpaceCosine:        {name: SpaceCosine, dataType: vector.DenseVector, dense: Cosine},
	SpaceL1:            {name: SpaceL1, dataType: vector.DenseVector, isMetric: true, dense: L1},
	SpaceLinf:          {name: SpaceLinf, dataType: vector.DenseVector, isMetric: true, dense: Linf},
	SpaceAngular:       {name: SpaceAngular, dataType: vector.DenseVector, isMetric: true, dense: Angular},
	SpaceNegDot:        {name: SpaceNegDot, dataType: vector.DenseVector, dense: NegDot},
	SpaceJensenShannon: {name: SpaceJensenShannon, dataType: vector.DenseVector, isMetric: true, dense: JensenShannon},

	SpaceL2Sparse:      {name: SpaceL2Sparse, dataType: vector.SparseVector, isMetric: true, sparse: SparseL2},
	SpaceCosineSparse:  {name: SpaceCosineSparse, dataType: vector.SparseVector, sparse: SparseCosine},
	SpaceL1Sparse:      {name: SpaceL1Sparse, dataType: vector.SparseVector, isMetric: true, sparse: SparseL1},
	SpaceLinfSparse:    {name: SpaceLinfSparse, dataType: vector.SparseVector, isMetric: true, sparse: SparseLinf},
	SpaceAngularSparse: {name: SpaceAngularSparse, dataType: vector.SparseVector, isMetric: true, sparse: SparseAngular},
	SpaceNegDotSparse:  {name: SpaceNegDotSparse, dataType: vector.SparseVector, sparse: SparseNegDot},
	SpaceJaccardSparse: {name: SpaceJaccardSparse, dataType: vector.SparseVector, isMetric: true, sparse: SparseJaccard},

	SpaceLevenshtein: {name: SpaceLevenshtein, dataType: vector.ObjectAsString, isMetric: true, object: Levenshtein},
	SpaceBitHamming:  {name: SpaceBitHamming, dataType: vector.ObjectAsString, isMetric: true, object: BitHamming},
	SpaceBitJaccard:  {name: SpaceBitJaccard, dataType: vector.ObjectAsString, isMetric: true, object: BitJaccard},
}
