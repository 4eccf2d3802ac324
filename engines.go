package knngraph

// Engines register themselves with the index registry.
import (
	_ "github.com/hupe1980/knngraph/index/flat"
	_ "github.com/hupe1980/knngraph/index/hnsw"
	_ "github.com/hupe1980/knngraph/index/invindex"
	_ "github.com/hupe1980/knngraph/index/vptree"
)
