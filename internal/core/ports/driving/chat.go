package driving

import (
	"context"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

// ChatService answers a single question from the corpus: retrieval,
// context assembly, and generation as one request-scoped unit of work.
type ChatService interface {
	// Ask runs the full pipeline for one question.
	Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error)
}

// RetrievalService exposes retrieval on its own, without generation.
type RetrievalService interface {
	// Retrieve returns the topK most similar passages for the query.
	Retrieve(ctx context.Context, query string, topK int) (domain.RetrievalResult, error)
}
