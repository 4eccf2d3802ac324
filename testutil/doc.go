// Package testutil provides testing utilities for knngraph.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic generators for dense, sparse and string
// datasets, and a recall helper.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	dense := rng.UniformVectors(200, 10)
//	sparse := rng.SparseVectors(200, 50, 0.1)
//	words := rng.Words(100, 3, 8)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(exactIDs, approxIDs)
package testutil
