package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedKeywordsExplicitWins(t *testing.T) {
	q := Question{
		Expected: "Yillik ucret 75000 TL'dir.",
		Keywords: []string{"75000"},
	}
	assert.Equal(t, []string{"75000"}, q.ExpectedKeywords())
}

func TestExpectedKeywordsDerived(t *testing.T) {
	q := Question{Expected: "The annual fee is 75000 TL, the fee covers tuition."}

	keywords := q.ExpectedKeywords()

	// Short words dropped, punctuation stripped, duplicates collapsed,
	// first occurrence order kept.
	assert.Equal(t, []string{"the", "annual", "fee", "75000", "covers", "tuition"}, keywords)
}

func TestExpectedKeywordsEmptyExpected(t *testing.T) {
	assert.Empty(t, Question{}.ExpectedKeywords())
}

func TestNewStats(t *testing.T) {
	s := NewStats([]float64{5, 1, 3, 2, 4})

	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, 3.0, s.Median, 1e-9)
	assert.InDelta(t, 1.0, s.Min, 1e-9)
	assert.InDelta(t, 5.0, s.Max, 1e-9)
	assert.InDelta(t, 4.0, s.P95, 1e-9) // nearest-rank on 5 samples
}

func TestNewStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, NewStats(nil))
}

func TestSummarizeExcludesFailuresFromQuality(t *testing.T) {
	report := &Report{
		Records: []AnswerRecord{
			{Query: "q1", Answer: "a1", SemanticSimilarity: 0.8, TotalMs: 1000, CostUSD: 0.001, Category: CategoryFeeStructure, Difficulty: DifficultyEasy},
			{Query: "q2", Answer: "a2", SemanticSimilarity: 0.6, TotalMs: 2000, CostUSD: 0.003, Category: CategoryFeeStructure, Difficulty: DifficultyHard},
			{Query: "q3", Error: "boom", Category: CategoryAdmission, Difficulty: DifficultyHard},
		},
	}

	report.Summarize(DefaultEvalThresholds())
	s := report.Summary

	assert.Equal(t, 3, s.Questions)
	assert.Equal(t, 1, s.Failures)

	// Failed record does not drag the means down.
	assert.InDelta(t, 0.7, s.Similarity.Mean, 1e-9)
	assert.InDelta(t, 1500, s.TotalTimeMs.Mean, 1e-9)
	assert.InDelta(t, 0.004, s.TotalCostUSD, 1e-9)

	fees := s.ByCategory[CategoryFeeStructure]
	assert.Equal(t, 2, fees.Questions)
	assert.Equal(t, 0, fees.Failures)
	assert.InDelta(t, 0.7, fees.MeanSimilarity, 1e-9)

	admission := s.ByCategory[CategoryAdmission]
	assert.Equal(t, 1, admission.Questions)
	assert.Equal(t, 1, admission.Failures)
	assert.Zero(t, admission.MeanSimilarity)

	hard := s.ByDifficulty[DifficultyHard]
	assert.Equal(t, 2, hard.Questions)
	assert.Equal(t, 1, hard.Failures)
}

func TestSummarizeVerdicts(t *testing.T) {
	report := &Report{
		Records: []AnswerRecord{
			{Query: "q", Answer: "a", SemanticSimilarity: 0.65, TotalMs: 1200, CostUSD: 0.002},
		},
	}

	report.Summarize(DefaultEvalThresholds())

	assert.True(t, report.Verdicts.SimilarityPass)
	assert.True(t, report.Verdicts.LatencyPass)
	assert.True(t, report.Verdicts.CostPass)
	assert.True(t, report.Verdicts.Pass())

	// Tighten one threshold and the run fails.
	report.Summarize(EvalThresholds{
		MinMeanSimilarity: 0.9,
		MaxMeanTimeMs:     3000,
		MaxMeanCostUSD:    0.01,
	})
	assert.False(t, report.Verdicts.SimilarityPass)
	assert.False(t, report.Verdicts.Pass())
}

func TestModelPricingCost(t *testing.T) {
	pricing := DefaultModelPricing()

	cost := pricing.Cost(1_000_000, TokenUsage{
		PromptTokens:     1_000_000,
		CompletionTokens: 1_000_000,
	})
	assert.InDelta(t, 0.02+0.15+0.60, cost, 1e-9)

	assert.Zero(t, pricing.Cost(0, TokenUsage{}))
}

func TestAnswerRecordFailed(t *testing.T) {
	require.False(t, AnswerRecord{Answer: "ok"}.Failed())
	require.True(t, AnswerRecord{Error: "boom"}.Failed())
}
