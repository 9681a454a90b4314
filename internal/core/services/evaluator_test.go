package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
)

// mockChat implements driving.ChatService for harness tests.
type mockChat struct {
	askFunc func(ctx context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error)
}

func (m *mockChat) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error) {
	return m.askFunc(ctx, req)
}

// identicalBatchEmbedder returns the same unit vector for every text,
// so semantic similarity is always 1.
func identicalBatchEmbedder() *mockEmbedder {
	return &mockEmbedder{
		batchFunc: func(_ context.Context, texts []string) ([]driven.Embedding, error) {
			embs := make([]driven.Embedding, len(texts))
			for i := range texts {
				embs[i] = driven.Embedding{Vector: []float32{1, 0, 0}}
			}
			return embs, nil
		},
	}
}

func TestEvaluatePartialFailureIsolation(t *testing.T) {
	chat := &mockChat{
		askFunc: func(_ context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error) {
			if req.Message == "q3" {
				return nil, &domain.RemoteServiceError{Service: "openai-chat", StatusCode: 500}
			}
			return &domain.ChatAnswer{
				Answer:  "answer to " + req.Message,
				TotalMs: 100,
				Usage:   domain.TokenUsage{PromptTokens: 50, CompletionTokens: 10, TotalTokens: 60},
			}, nil
		},
	}

	questions := make([]domain.Question, 5)
	for i := range questions {
		questions[i] = domain.Question{
			Query:    fmt.Sprintf("q%d", i+1),
			Expected: "expected answer",
		}
	}

	e := NewEvaluator(chat, identicalBatchEmbedder(), EvaluatorConfig{Concurrency: 2})
	report, err := e.Evaluate(context.Background(), questions)
	require.NoError(t, err)

	require.Len(t, report.Records, 5)
	assert.Equal(t, 5, report.Summary.Questions)
	assert.Equal(t, 1, report.Summary.Failures)

	// Records stay in question order regardless of worker scheduling.
	for i, rec := range report.Records {
		assert.Equal(t, fmt.Sprintf("q%d", i+1), rec.Query)
	}
	assert.True(t, report.Records[2].Failed())
	assert.Empty(t, report.Records[2].Answer)

	// Successful records are fully scored.
	assert.InDelta(t, 1.0, report.Records[0].SemanticSimilarity, 1e-6)
	assert.NotEmpty(t, report.RunID)
}

func TestEvaluateComputesCost(t *testing.T) {
	chat := &mockChat{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			return &domain.ChatAnswer{
				Answer:          "cevap",
				EmbeddingTokens: 10,
				Usage:           domain.TokenUsage{PromptTokens: 1000, CompletionTokens: 500, TotalTokens: 1500},
			}, nil
		},
	}

	e := NewEvaluator(chat, identicalBatchEmbedder(), EvaluatorConfig{})
	report, err := e.Evaluate(context.Background(), []domain.Question{{Query: "q"}})
	require.NoError(t, err)

	rec := report.Records[0]
	assert.Equal(t, 1510, rec.TokensUsed)
	want := domain.DefaultModelPricing().Cost(10, domain.TokenUsage{PromptTokens: 1000, CompletionTokens: 500})
	assert.InDelta(t, want, rec.CostUSD, 1e-12)
}

func TestEvaluateSkipsScoringWithoutExpectedAnswer(t *testing.T) {
	batchCalled := false
	embedder := &mockEmbedder{
		batchFunc: func(_ context.Context, _ []string) ([]driven.Embedding, error) {
			batchCalled = true
			return nil, nil
		},
	}
	chat := &mockChat{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			return &domain.ChatAnswer{Answer: "cevap"}, nil
		},
	}

	e := NewEvaluator(chat, embedder, EvaluatorConfig{})
	report, err := e.Evaluate(context.Background(), []domain.Question{{Query: "open question"}})
	require.NoError(t, err)

	assert.False(t, batchCalled)
	assert.Zero(t, report.Records[0].SemanticSimilarity)
}

func TestEvaluateScoringFailureKeepsAnswer(t *testing.T) {
	embedder := &mockEmbedder{
		batchFunc: func(_ context.Context, _ []string) ([]driven.Embedding, error) {
			return nil, &domain.RemoteServiceError{Service: "openai-embedding", StatusCode: 429}
		},
	}
	chat := &mockChat{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			return &domain.ChatAnswer{Answer: "cevap"}, nil
		},
	}

	e := NewEvaluator(chat, embedder, EvaluatorConfig{})
	report, err := e.Evaluate(context.Background(), []domain.Question{
		{Query: "q", Expected: "beklenen"},
	})
	require.NoError(t, err)

	rec := report.Records[0]
	assert.False(t, rec.Failed())
	assert.Equal(t, "cevap", rec.Answer)
	assert.Zero(t, rec.SemanticSimilarity)
}

func TestEvaluateVerdicts(t *testing.T) {
	chat := &mockChat{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			return &domain.ChatAnswer{Answer: "cevap", TotalMs: 100}, nil
		},
	}

	e := NewEvaluator(chat, identicalBatchEmbedder(), EvaluatorConfig{
		Thresholds: domain.EvalThresholds{
			MinMeanSimilarity: 0.9,
			MaxMeanTimeMs:     3000,
			MaxMeanCostUSD:    0.01,
		},
	})
	report, err := e.Evaluate(context.Background(), []domain.Question{
		{Query: "q", Expected: "beklenen"},
	})
	require.NoError(t, err)

	// Similarity 1.0 beats the 0.9 floor, latency and cost are under.
	assert.True(t, report.Verdicts.SimilarityPass)
	assert.True(t, report.Verdicts.LatencyPass)
	assert.True(t, report.Verdicts.CostPass)
	assert.True(t, report.Verdicts.Pass())
}

func TestKeywordOverlap(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		keywords []string
		want     float64
	}{
		{
			name:     "all present case-insensitive",
			answer:   "Yillik Ucret 75000 TL'dir.",
			keywords: []string{"yillik", "ucret"},
			want:     1.0,
		},
		{
			name:     "half present",
			answer:   "Ucret bilgisi bulunamadi.",
			keywords: []string{"ucret", "75000"},
			want:     0.5,
		},
		{
			name:     "none present",
			answer:   "Bu konuda bilgi yok.",
			keywords: []string{"kayit", "tarih"},
			want:     0.0,
		},
		{
			name:     "no keywords",
			answer:   "herhangi bir cevap",
			keywords: nil,
			want:     0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, KeywordOverlap(tt.answer, tt.keywords), 1e-9)
		})
	}
}
