package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
	"github.com/izu-labs/izuchat/internal/core/ports/driving"
	"github.com/izu-labs/izuchat/internal/logger"
)

// Ensure ChatPipeline implements the interface.
var _ driving.ChatService = (*ChatPipeline)(nil)

// Generation defaults. Low temperature favours faithfulness to the
// supplied context over creativity.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 500
)

// ChatPipelineConfig tunes the two pipeline stages.
type ChatPipelineConfig struct {
	// TopK is the number of passages retrieved per question.
	TopK int

	// Temperature is the sampling temperature for generation.
	Temperature float64

	// MaxTokens bounds the generated answer length.
	MaxTokens int
}

// withDefaults fills unset fields.
func (c ChatPipelineConfig) withDefaults() ChatPipelineConfig {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// ChatPipeline is the retrieval-and-answer pipeline: embed the query,
// search the index, assemble the retrieved passages into a prompt, and
// generate a grounded answer. It holds only shared read-only state and
// is safe for concurrent use; every question is an independent unit of
// work.
type ChatPipeline struct {
	retriever *Retriever
	model     driven.ChatModel
	cfg       ChatPipelineConfig
}

// NewChatPipeline wires the pipeline stages.
func NewChatPipeline(retriever *Retriever, model driven.ChatModel, cfg ChatPipelineConfig) *ChatPipeline {
	return &ChatPipeline{
		retriever: retriever,
		model:     model,
		cfg:       cfg.withDefaults(),
	}
}

// Ask runs the full pipeline for one question. The two remote calls are
// strictly sequential within a request: the search needs the query
// embedding, and generation needs the retrieved context. A remote
// failure in either stage aborts the request; no answer is fabricated
// without retrieval having run.
func (p *ChatPipeline) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Section("Chat Pipeline")
	logger.Debug("Question: %q (language=%s)", req.Message, req.Language)

	results, embTokens, err := p.retriever.RetrieveWithUsage(ctx, req.Message, p.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	retrievalMs := float64(time.Since(start).Microseconds()) / 1000

	if len(results) == 0 {
		logger.Warn("No passages retrieved, generating with empty context")
	}

	contextBlock := BuildContext(results)
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: systemPromptFor(req.Language)},
		{Role: driven.RoleUser, Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, req.Message)},
	}

	genStart := time.Now()
	completion, err := p.model.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	generationMs := float64(time.Since(genStart).Microseconds()) / 1000

	sources := make([]domain.Source, len(results))
	for i, r := range results {
		sources[i] = r.ToSource()
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	answer := &domain.ChatAnswer{
		Answer:          completion.Content,
		Sources:         sources,
		ConversationID:  conversationID,
		RetrievalMs:     retrievalMs,
		GenerationMs:    generationMs,
		TotalMs:         float64(time.Since(start).Microseconds()) / 1000,
		EmbeddingTokens: embTokens,
		Usage:           completion.Usage,
	}

	logger.Info("Answered in %.0fms (retrieval %.0fms, generation %.0fms, %d sources)",
		answer.TotalMs, answer.RetrievalMs, answer.GenerationMs, len(sources))
	return answer, nil
}
