package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
	"github.com/izu-labs/izuchat/internal/core/ports/driving"
	"github.com/izu-labs/izuchat/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// DefaultTopK is the number of passages retrieved when the caller does
// not specify one.
const DefaultTopK = 5

// Retriever embeds a query and finds the most similar corpus passages.
// The corpus and index are shared read-only state; a Retriever is safe
// for concurrent use.
type Retriever struct {
	corpus   *domain.Corpus
	index    driven.VectorIndex
	embedder driven.EmbeddingService

	// minScore drops hits scoring below the floor before they reach
	// context assembly. Zero disables the cutoff.
	minScore float32
}

// NewRetriever wires a retriever over a corpus and its index. It fails
// when the index row count disagrees with the corpus size: serving
// mismatched rows would silently cite the wrong passages.
func NewRetriever(
	corpus *domain.Corpus,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	minScore float32,
) (*Retriever, error) {
	if index.Len() != corpus.Len() {
		return nil, fmt.Errorf("index has %d rows, corpus has %d passages: %w",
			index.Len(), corpus.Len(), domain.ErrIndexCorpusMismatch)
	}
	return &Retriever{
		corpus:   corpus,
		index:    index,
		embedder: embedder,
		minScore: minScore,
	}, nil
}

// Retrieve returns the topK passages most similar to the query, sorted
// by descending score. An empty corpus yields an empty result; an
// embedding failure propagates unchanged.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (domain.RetrievalResult, error) {
	results, _, err := r.RetrieveWithUsage(ctx, query, topK)
	return results, err
}

// RetrieveWithUsage behaves like Retrieve and also returns the billed
// embedding token count for cost accounting.
func (r *Retriever) RetrieveWithUsage(
	ctx context.Context, query string, topK int,
) (domain.RetrievalResult, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, domain.ErrEmptyQuery
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	if r.corpus.Len() == 0 {
		logger.Warn("Retrieval against empty corpus, returning no passages")
		return domain.RetrievalResult{}, 0, nil
	}

	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("embed query: %w", err)
	}

	vec := domain.NormalizeVector(emb.Vector)

	hits, err := r.index.Search(ctx, vec, topK)
	if err != nil {
		return nil, 0, fmt.Errorf("index search: %w", err)
	}

	results := make(domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		if r.minScore > 0 && hit.Score < r.minScore {
			logger.Debug("Dropping row %d below score floor: %.4f < %.4f",
				hit.Row, hit.Score, r.minScore)
			continue
		}
		passage, err := r.corpus.At(hit.Row)
		if err != nil {
			return nil, 0, fmt.Errorf("map row %d to passage: %w", hit.Row, err)
		}
		results = append(results, domain.ScoredPassage{
			Passage: passage,
			Row:     hit.Row,
			Score:   hit.Score,
		})
	}

	logger.Debug("Retrieved %d passages for query (topK=%d)", len(results), topK)
	return results, emb.PromptTokens, nil
}
