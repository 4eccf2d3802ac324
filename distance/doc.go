// Package distance provides the concrete spaces an index can be built over.
//
// # Spaces
//
// Dense vector spaces:
//
//   - l2, l1, linf, lp: Minkowski family (lp takes Params.P)
//   - cosinesimil: 1 - cosine similarity
//   - angulardist: angle in radians
//   - negdotprod: negated inner product
//   - jsmetrfastapprox: square root of the Jensen-Shannon divergence
//
// Sparse vector spaces mirror the dense ones with a _sparse or
// _sparse_fast suffix, plus jaccard_sparse over the sets of stored
// features.
//
// Object spaces work on strings: leven (edit distance), bit_hamming and
// bit_jaccard (whitespace separated 0/1 tokens).
//
// # Usage
//
//	sp, _ := distance.Lookup(distance.SpaceCosine, distance.Params{})
//	d := sp.Distance(setA, 0, setB, 3)
package distance
