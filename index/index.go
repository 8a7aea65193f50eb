package index

import (
	"context"

	"github.com/poiesic/medgate/core"
)

// Retriever finds the indexed passages most similar to a query embedding.
// Implementations must be thread-safe for concurrent use.
type Retriever interface {
	// Search returns the top-k most similar passages, ordered by descending
	// similarity. It may return fewer than k results, and an empty result
	// list is valid, never an error. No minimum-similarity floor is applied
	// at this layer; downstream evaluation penalizes weak context.
	Search(ctx context.Context, vector []float32, k int) ([]core.RetrievedChunk, error)
}

// Passage is one pre-chunked document passage to be indexed.
// Chunking itself is an offline ingestion concern; the index only stores
// what it is given.
type Passage struct {
	Text      string
	SourceID  string
	Offset    int
	Embedding []float32
}
