// Package knngraph builds approximate k-nearest-neighbor graphs.
//
// A Transformer indexes a dataset once and answers batched kNN queries
// against it, returning a sparse row-compressed neighbor graph. It is a
// fast replacement for exact neighbor search in graph-based dimensionality
// reduction and clustering.
//
// # Quick Start
//
//	ctx := context.Background()
//	t, _ := knngraph.New(
//	    knngraph.WithNeighbors(15),
//	    knngraph.WithMetric("euclidean"),
//	)
//	g, _ := t.FitTransform(ctx, rows) // rows is a [][]float32
//	cols, dists := g.Row(0)           // 16 entries, point 0 first
//
// Every query row holds k+1 neighbors since each fitted point is its own
// nearest neighbor. The requested k is never changed by queries; use
// UpdateSearch to change it.
//
// # Inputs
//
// Fit, Transform, Query and TestEfficiency accept the variants of package
// dataset (Dense, *CSR, Frame, Strings) as well as [][]float32,
// [][]float64, []string, gonum matrices and Arrow records. Dense input is
// converted to sparse unless WithDense(true) is set. Frame columns are
// treated as samples.
//
// # Methods
//
//   - "hnsw": hierarchical navigable small world graph (default)
//   - "sw-graph": single-layer small world graph
//   - "vp-tree": exact vantage-point tree, metric spaces only
//   - "simple_invindx": exact inverted index, sparse negdotprod only
//   - "brute_force": exact scan
//
// # Outputs
//
// Query returns indices and distances and, on request, the graph and the
// per-edge distance gradients (sqeuclidean, euclidean, cosine and linf).
// TestEfficiency reports the recall of the index against brute force.
package knngraph
