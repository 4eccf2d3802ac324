// Package metric maps user-facing metric names onto concrete spaces.
//
// The registry is a closed enumeration. Resolving a metric against the data
// type of a dataset yields the space to build the index over and the
// conversion the data must go through first. String metrics over numeric
// input, for example, require the points to be rendered as strings before
// indexing.
package metric

import (
	"fmt"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/vector"
)

// Metric is a user-facing distance name.
type Metric int

const (
	SqEuclidean Metric = iota
	Euclidean
	Cosine
	Lp
	L1
	Linf
	Angular
	NegDotProd
	JensenShannon
	Levenshtein
	Hamming
	Jaccard
	EuclideanSparse
	CosineSparse
	L1Sparse
	LinfSparse
	AngularSparse
	NegDotProdSparse
	JaccardSparse
)

// Conversion is the data conversion a resolution requires before indexing.
type Conversion int

const (
	// ConvertNone leaves the data as normalized.
	ConvertNone Conversion = iota
	// ConvertDensify materializes sparse points as dense vectors.
	ConvertDensify
	// ConvertBits renders numeric points as whitespace separated 0/1 tokens.
	// Any non-zero coordinate becomes 1.
	ConvertBits
	// ConvertText renders numeric points as whitespace separated values.
	ConvertText
)

func (c Conversion) String() string {
	switch c {
	case ConvertNone:
		return "none"
	case ConvertDensify:
		return "densify"
	case ConvertBits:
		return "bits"
	case ConvertText:
		return "text"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

type entry struct {
	name     string
	dense    string
	sparse   string
	object   string
	gradient bool
}

var registry = [...]entry{
	SqEuclidean:      {name: "sqeuclidean", dense: distance.SpaceL2, sparse: distance.SpaceL2Sparse, gradient: true},
	Euclidean:        {name: "euclidean", dense: distance.SpaceL2, sparse: distance.SpaceL2Sparse, gradient: true},
	Cosine:           {name: "cosine", dense: distance.SpaceCosine, sparse: distance.SpaceCosineSparse, gradient: true},
	Lp:               {name: "lp", dense: distance.SpaceLp, sparse: distance.SpaceLpSparse},
	L1:               {name: "l1", dense: distance.SpaceL1, sparse: distance.SpaceL1Sparse},
	Linf:             {name: "linf", dense: distance.SpaceLinf, sparse: distance.SpaceLinfSparse, gradient: true},
	Angular:          {name: "angular", dense: distance.SpaceAngular, sparse: distance.SpaceAngularSparse},
	NegDotProd:       {name: "negdotprod", dense: distance.SpaceNegDot, sparse: distance.SpaceNegDotSparse},
	JensenShannon:    {name: "jansen-shan", dense: distance.SpaceJensenShannon},
	Levenshtein:      {name: "levenshtein", object: distance.SpaceLevenshtein},
	Hamming:          {name: "hamming", object: distance.SpaceBitHamming},
	Jaccard:          {name: "jaccard", object: distance.SpaceBitJaccard},
	EuclideanSparse:  {name: "euclidean_sparse", sparse: distance.SpaceL2Sparse},
	CosineSparse:     {name: "cosine_sparse", sparse: distance.SpaceCosineSparse},
	L1Sparse:         {name: "l1_sparse", sparse: distance.SpaceL1Sparse},
	LinfSparse:       {name: "linf_sparse", sparse: distance.SpaceLinfSparse},
	AngularSparse:    {name: "angular_sparse", sparse: distance.SpaceAngularSparse},
	NegDotProdSparse: {name: "negdotprod_sparse", sparse: distance.SpaceNegDotSparse},
	JaccardSparse:    {name: "jaccard_sparse", sparse: distance.SpaceJaccardSparse},
}

var byName = func() map[string]Metric {
	m := make(map[string]Metric, len(registry))
	for i, e := range registry {
		m[e.name] = Metric(i)
	}
	return m
}()

// UnsupportedError reports an unknown metric name or a metric that cannot
// be used with the given data type.
type UnsupportedError struct {
	Name     string
	DataType vector.DataType
	Unknown  bool
}

func (e *UnsupportedError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("unknown metric %q", e.Name)
	}
	return fmt.Sprintf("metric %q does not support %s data", e.Name, e.DataType)
}

// Parse returns the metric registered under name.
func Parse(name string) (Metric, error) {
	m, ok := byName[name]
	if !ok {
		return 0, &UnsupportedError{Name: name, Unknown: true}
	}
	return m, nil
}

// All returns every registered metric in declaration order.
func All() []Metric {
	out := make([]Metric, len(registry))
	for i := range registry {
		out[i] = Metric(i)
	}
	return out
}

func (m Metric) valid() bool { return m >= 0 && int(m) < len(registry) }

// String returns the registry name of the metric.
func (m Metric) String() string {
	if !m.valid() {
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
	return registry[m].name
}

// HasGradient reports whether distance gradients are defined for m.
func (m Metric) HasGradient() bool {
	return m.valid() && registry[m].gradient
}

// Squared reports whether query distances must be squared before they are
// returned.
func (m Metric) Squared() bool { return m == SqEuclidean }

// IsString reports whether m operates on string objects.
func (m Metric) IsString() bool {
	return m.valid() && registry[m].object != ""
}

// Resolution is the outcome of resolving a metric against a data type.
type Resolution struct {
	Metric     Metric
	Space      string
	DataType   vector.DataType
	Conversion Conversion
}

// Resolve returns the space and conversion to use for data of type dt.
func (m Metric) Resolve(dt vector.DataType) (Resolution, error) {
	if !m.valid() {
		return Resolution{}, &UnsupportedError{Name: m.String(), Unknown: true}
	}
	e := registry[m]
	res := Resolution{Metric: m}

	if e.object != "" {
		res.Space = e.object
		res.DataType = vector.ObjectAsString
		if dt != vector.ObjectAsString {
			res.Conversion = ConvertText
			if m != Levenshtein {
				res.Conversion = ConvertBits
			}
		}
		return res, nil
	}

	switch dt {
	case vector.SparseVector:
		if e.sparse != "" {
			res.Space, res.DataType = e.sparse, vector.SparseVector
			return res, nil
		}
		res.Space, res.DataType, res.Conversion = e.dense, vector.DenseVector, ConvertDensify
		return res, nil
	case vector.DenseVector:
		if e.dense != "" {
			res.Space, res.DataType = e.dense, vector.DenseVector
			return res, nil
		}
	}
	return Resolution{}, &UnsupportedError{Name: e.name, DataType: dt}
}
