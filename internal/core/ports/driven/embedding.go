package driven

import "context"

// Embedding is the result of one embedding call.
type Embedding struct {
	// Vector is the raw model output. Callers normalize it before
	// querying the similarity index.
	Vector []float32

	// PromptTokens is the billed token count reported by the service.
	PromptTokens int
}

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates an embedding for the given text. Adapters replace
	// newlines with spaces before submission; embedding models are
	// sensitive to raw whitespace.
	Embed(ctx context.Context, text string) (*Embedding, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// Results are returned in input order.
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)

	// Dimensions returns the embedding vector size (e.g. 1536).
	// This is determined by the model and must match the index.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
