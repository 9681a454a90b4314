package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
	"github.com/izu-labs/izuchat/internal/core/ports/driving"
	"github.com/izu-labs/izuchat/internal/logger"
)

// Ensure Evaluator implements the interface.
var _ driving.EvalService = (*Evaluator)(nil)

// DefaultEvalConcurrency bounds parallel questions in a harness run.
const DefaultEvalConcurrency = 4

// EvaluatorConfig tunes a harness run.
type EvaluatorConfig struct {
	// Concurrency is the number of questions evaluated in parallel.
	Concurrency int

	// RequestsPerSecond throttles pipeline calls across workers so a
	// run does not trip remote rate limits. Zero disables throttling.
	RequestsPerSecond float64

	// Thresholds are the pass/fail targets. Zero value means defaults.
	Thresholds domain.EvalThresholds

	// Pricing is the per-token rate table. Zero value means defaults.
	Pricing domain.ModelPricing
}

func (c EvaluatorConfig) withDefaults() EvaluatorConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultEvalConcurrency
	}
	if c.Thresholds == (domain.EvalThresholds{}) {
		c.Thresholds = domain.DefaultEvalThresholds()
	}
	if c.Pricing == (domain.ModelPricing{}) {
		c.Pricing = domain.DefaultModelPricing()
	}
	return c
}

// Evaluator replays a question set through the chat pipeline and scores
// the answers. It never alters pipeline behaviour; it only drives it.
type Evaluator struct {
	chat     driving.ChatService
	embedder driven.EmbeddingService
	cfg      EvaluatorConfig
	limiter  *rate.Limiter
}

// NewEvaluator wires an evaluation harness around the pipeline. The
// embedder is used a second time per question, to compare generated and
// expected answers by embedding cosine similarity.
func NewEvaluator(chat driving.ChatService, embedder driven.EmbeddingService, cfg EvaluatorConfig) *Evaluator {
	cfg = cfg.withDefaults()
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Evaluator{
		chat:     chat,
		embedder: embedder,
		cfg:      cfg,
		limiter:  limiter,
	}
}

// Evaluate runs every question with bounded concurrency and returns the
// aggregated report. A failed question becomes an error record; the
// rest of the batch continues. Aggregates are order-independent, so no
// ordering is enforced between questions.
func (e *Evaluator) Evaluate(ctx context.Context, questions []domain.Question) (*domain.Report, error) {
	logger.Section("Evaluation Run")
	logger.Info("Evaluating %d questions (concurrency=%d)", len(questions), e.cfg.Concurrency)

	records := make([]domain.AnswerRecord, len(questions))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Concurrency)

	for i, q := range questions {
		wg.Add(1)
		go func(i int, q domain.Question) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records[i] = e.evaluateOne(ctx, q)
		}(i, q)
	}
	wg.Wait()

	report := &domain.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Records:     records,
	}
	report.Summarize(e.cfg.Thresholds)

	logger.Info("Run %s: %d questions, %d failures, mean similarity %.3f",
		report.RunID, report.Summary.Questions, report.Summary.Failures,
		report.Summary.Similarity.Mean)
	return report, nil
}

// evaluateOne runs a single question end to end and scores the answer.
// All failures are folded into the record's Error field.
func (e *Evaluator) evaluateOne(ctx context.Context, q domain.Question) domain.AnswerRecord {
	record := domain.AnswerRecord{
		Query:      q.Query,
		Expected:   q.Expected,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			record.Error = fmt.Sprintf("rate limiter: %v", err)
			return record
		}
	}

	answer, err := e.chat.Ask(ctx, domain.ChatRequest{
		Message:  q.Query,
		Language: q.Language,
	})
	if err != nil {
		logger.Warn("Question %q failed: %v", q.Query, err)
		record.Error = err.Error()
		return record
	}

	record.Answer = answer.Answer
	record.RetrievalMs = answer.RetrievalMs
	record.GenerationMs = answer.GenerationMs
	record.TotalMs = answer.TotalMs
	record.Sources = answer.Sources
	record.TokensUsed = answer.EmbeddingTokens + answer.Usage.TotalTokens
	record.CostUSD = e.cfg.Pricing.Cost(answer.EmbeddingTokens, answer.Usage)

	if q.Expected != "" {
		sim, err := e.semanticSimilarity(ctx, answer.Answer, q.Expected)
		if err != nil {
			// Scoring failure is not a pipeline failure; keep the
			// answer and note the missing score.
			logger.Warn("Similarity scoring failed for %q: %v", q.Query, err)
		} else {
			record.SemanticSimilarity = sim
		}
		record.KeywordOverlap = KeywordOverlap(answer.Answer, q.ExpectedKeywords())
	}

	return record
}

// semanticSimilarity embeds both answers in one batch call and returns
// the cosine similarity of the vectors.
func (e *Evaluator) semanticSimilarity(ctx context.Context, generated, expected string) (float64, error) {
	embs, err := e.embedder.EmbedBatch(ctx, []string{generated, expected})
	if err != nil {
		return 0, fmt.Errorf("embed answers: %w", err)
	}
	if len(embs) != 2 {
		return 0, fmt.Errorf("expected 2 embeddings, got %d", len(embs))
	}
	return domain.CosineSimilarity(embs[0].Vector, embs[1].Vector), nil
}

// KeywordOverlap returns the fraction of expected keywords appearing in
// the generated answer, case-insensitively. No keywords yields zero.
func KeywordOverlap(answer string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(answer)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}
