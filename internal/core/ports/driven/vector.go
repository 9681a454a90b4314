package driven

import "context"

// VectorHit is a similarity search result.
type VectorHit struct {
	// Row is the index row of the matched vector, which equals the
	// corpus position of the matching passage.
	Row int

	// Score is the inner product with the query vector. For unit
	// vectors this is the cosine similarity.
	Score float32
}

// VectorIndex provides top-k nearest-neighbour search by inner product
// over the corpus passage vectors. The index is built offline, loaded at
// startup, and never mutated while serving; implementations need no
// locking for concurrent Search calls.
type VectorIndex interface {
	// Search returns up to k hits sorted by descending score, ties
	// broken by ascending row. The query vector must be normalized with
	// the same routine used for the stored vectors. k < 1 is an error;
	// k larger than the index returns every row.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size of the index.
	Dimensions() int

	// Close releases resources.
	Close() error
}
