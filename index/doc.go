// Package index defines the contract between the estimator and the ANN
// engines that build and query a neighbor index.
//
// Engines register themselves by method name from an init function:
//
//	func init() {
//	    index.Register(index.MethodHNSW, newHNSW)
//	}
//
// # Methods
//
//   - hnsw: hierarchical navigable small world graph (approximate)
//   - sw-graph: single layer navigable small world graph (approximate)
//   - brute_force: exhaustive scan (exact)
//   - simple_invindx: inverted index over sparse features (exact, negdotprod only)
//   - vp-tree: vantage-point tree (exact, metric spaces only)
//
// # Lifecycle
//
// An index receives its whole dataset through a single AddBatch call, is
// built once, and is then queried any number of times. Query-time
// parameters travel with each KNNQueryBatch call.
package index
