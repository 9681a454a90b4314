package services

import (
	"context"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
)

// mockEmbedder implements driven.EmbeddingService for tests.
type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) (*driven.Embedding, error)
	batchFunc func(ctx context.Context, texts []string) ([]driven.Embedding, error)
	dims      int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (*driven.Embedding, error) {
	return m.embedFunc(ctx, text)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]driven.Embedding, error) {
	return m.batchFunc(ctx, texts)
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockIndex implements driven.VectorIndex for tests.
type mockIndex struct {
	searchFunc func(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error)
	rows       int
	dims       int
}

func (m *mockIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	return m.searchFunc(ctx, query, k)
}

func (m *mockIndex) Len() int { return m.rows }

func (m *mockIndex) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockIndex) Close() error { return nil }

// mockChatModel implements driven.ChatModel for tests.
type mockChatModel struct {
	chatFunc func(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (*driven.ChatResult, error)
}

func (m *mockChatModel) Chat(
	ctx context.Context,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
) (*driven.ChatResult, error) {
	return m.chatFunc(ctx, messages, opts)
}

func (m *mockChatModel) ModelName() string { return "mock-chat" }

func (m *mockChatModel) Ping(context.Context) error { return nil }

func (m *mockChatModel) Close() error { return nil }

// testCorpus builds a small corpus with predictable titles.
func testCorpus(titles ...string) *domain.Corpus {
	passages := make([]domain.Passage, len(titles))
	for i, title := range titles {
		passages[i] = domain.Passage{
			Content: "Content of " + title,
			Metadata: domain.PassageMetadata{
				Title: title,
				URL:   "https://www.izu.edu.tr/" + title,
			},
		}
	}
	return domain.NewCorpus(passages)
}
