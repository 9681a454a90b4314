package domain

import (
	"sort"
	"strings"
	"time"
)

// Difficulty buckets evaluation questions.
type Difficulty string

// Difficulty levels for evaluation questions.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a single entry of the evaluation set.
type Question struct {
	// Query is the question put to the pipeline.
	Query string `json:"query"`

	// Expected is the reference answer, empty for open questions.
	Expected string `json:"expected_answer"`

	// Keywords are the expected-answer terms used for keyword overlap.
	// When empty, keywords are derived from Expected.
	Keywords []string `json:"keywords,omitempty"`

	// Category groups questions by content area.
	Category Category `json:"category,omitempty"`

	// Difficulty groups questions by expected hardness.
	Difficulty Difficulty `json:"difficulty,omitempty"`

	// Language selects the system instruction language.
	Language Language `json:"language,omitempty"`
}

// ExpectedKeywords returns the keywords used for overlap scoring:
// the explicit Keywords when present, otherwise terms derived from the
// expected answer (lowercased words of three or more characters,
// punctuation stripped, first occurrence kept).
func (q Question) ExpectedKeywords() []string {
	if len(q.Keywords) > 0 {
		return q.Keywords
	}
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(q.Expected)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len([]rune(w)) < 3 || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// AnswerRecord is the outcome of running one question through the full
// pipeline. Records are immutable after creation.
type AnswerRecord struct {
	Query      string     `json:"query"`
	Answer     string     `json:"answer,omitempty"`
	Expected   string     `json:"expected_answer,omitempty"`
	Category   Category   `json:"category,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`

	RetrievalMs  float64 `json:"retrieval_time_ms"`
	GenerationMs float64 `json:"generation_time_ms"`
	TotalMs      float64 `json:"total_time_ms"`

	TokensUsed int     `json:"tokens_used"`
	CostUSD    float64 `json:"cost_usd"`

	SemanticSimilarity float64 `json:"semantic_similarity"`
	KeywordOverlap     float64 `json:"keyword_overlap"`

	Sources []Source `json:"sources,omitempty"`

	// Error marks a failed pipeline call. Failed records carry no
	// answer or scores and are excluded from quality aggregates.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the record is an error marker.
func (r AnswerRecord) Failed() bool {
	return r.Error != ""
}

// EvalThresholds are the pass/fail targets a harness run is judged
// against. Named here so targets can be tuned in configuration without
// touching pipeline logic.
type EvalThresholds struct {
	// MinMeanSimilarity is the minimum acceptable mean semantic
	// similarity between generated and expected answers.
	MinMeanSimilarity float64 `json:"min_mean_similarity" toml:"min_mean_similarity"`

	// MaxMeanTimeMs is the maximum acceptable mean response time.
	MaxMeanTimeMs float64 `json:"max_mean_time_ms" toml:"max_mean_time_ms"`

	// MaxMeanCostUSD is the maximum acceptable mean cost per question.
	MaxMeanCostUSD float64 `json:"max_mean_cost_usd" toml:"max_mean_cost_usd"`
}

// DefaultEvalThresholds returns the documented quality targets.
func DefaultEvalThresholds() EvalThresholds {
	return EvalThresholds{
		MinMeanSimilarity: 0.60,
		MaxMeanTimeMs:     3000,
		MaxMeanCostUSD:    0.01,
	}
}

// Verdicts are the threshold checks of a harness run.
type Verdicts struct {
	SimilarityPass bool `json:"similarity_pass"`
	LatencyPass    bool `json:"latency_pass"`
	CostPass       bool `json:"cost_pass"`
}

// Pass reports whether every verdict passed.
func (v Verdicts) Pass() bool {
	return v.SimilarityPass && v.LatencyPass && v.CostPass
}

// Stats summarises a sample: associative reductions only, so the result
// is independent of evaluation order.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// NewStats computes summary statistics over the sample. Returns the
// zero value for an empty sample.
func NewStats(sample []float64) Stats {
	if len(sample) == 0 {
		return Stats{}
	}
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return Stats{
		Mean:   sum / float64(len(sorted)),
		Median: percentile(sorted, 0.50),
		P95:    percentile(sorted, 0.95),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// percentile expects a sorted sample and uses nearest-rank selection.
func percentile(sorted []float64, p float64) float64 {
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// Bucket aggregates records sharing a category or difficulty.
type Bucket struct {
	Questions      int     `json:"questions"`
	Failures       int     `json:"failures"`
	MeanSimilarity float64 `json:"mean_similarity"`
	MeanTimeMs     float64 `json:"mean_time_ms"`
	MeanCostUSD    float64 `json:"mean_cost_usd"`
}

// Summary aggregates a whole harness run.
type Summary struct {
	Questions int `json:"questions"`
	Failures  int `json:"failures"`

	Similarity     Stats   `json:"semantic_similarity"`
	KeywordOverlap Stats   `json:"keyword_overlap"`
	TotalTimeMs    Stats   `json:"total_time_ms"`
	RetrievalMs    Stats   `json:"retrieval_time_ms"`
	GenerationMs   Stats   `json:"generation_time_ms"`
	CostUSD        Stats   `json:"cost_usd"`
	TotalCostUSD   float64 `json:"total_cost_usd"`

	ByCategory   map[Category]Bucket   `json:"by_category,omitempty"`
	ByDifficulty map[Difficulty]Bucket `json:"by_difficulty,omitempty"`
}

// Report is the structured artifact of a harness run.
type Report struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Records     []AnswerRecord `json:"records"`
	Summary     Summary        `json:"summary"`
	Thresholds  EvalThresholds `json:"thresholds"`
	Verdicts    Verdicts       `json:"verdicts"`
}

// Summarize computes the aggregate summary and verdicts over the
// report's records against the given thresholds.
func (r *Report) Summarize(thresholds EvalThresholds) {
	r.Thresholds = thresholds
	s := Summary{
		Questions:    len(r.Records),
		ByCategory:   make(map[Category]Bucket),
		ByDifficulty: make(map[Difficulty]Bucket),
	}

	var sims, overlaps, totals, retrievals, generations, costs []float64
	type bucketAcc struct {
		n, failures int
		sim, t, c   float64
		scored      int
	}
	byCat := make(map[Category]*bucketAcc)
	byDiff := make(map[Difficulty]*bucketAcc)

	acc := func(m map[Category]*bucketAcc, k Category) *bucketAcc {
		if m[k] == nil {
			m[k] = &bucketAcc{}
		}
		return m[k]
	}
	accD := func(m map[Difficulty]*bucketAcc, k Difficulty) *bucketAcc {
		if m[k] == nil {
			m[k] = &bucketAcc{}
		}
		return m[k]
	}

	for _, rec := range r.Records {
		ca := acc(byCat, rec.Category)
		da := accD(byDiff, rec.Difficulty)
		ca.n++
		da.n++
		if rec.Failed() {
			s.Failures++
			ca.failures++
			da.failures++
			continue
		}
		sims = append(sims, rec.SemanticSimilarity)
		overlaps = append(overlaps, rec.KeywordOverlap)
		totals = append(totals, rec.TotalMs)
		retrievals = append(retrievals, rec.RetrievalMs)
		generations = append(generations, rec.GenerationMs)
		costs = append(costs, rec.CostUSD)
		s.TotalCostUSD += rec.CostUSD

		for _, a := range []*bucketAcc{ca, da} {
			a.scored++
			a.sim += rec.SemanticSimilarity
			a.t += rec.TotalMs
			a.c += rec.CostUSD
		}
	}

	s.Similarity = NewStats(sims)
	s.KeywordOverlap = NewStats(overlaps)
	s.TotalTimeMs = NewStats(totals)
	s.RetrievalMs = NewStats(retrievals)
	s.GenerationMs = NewStats(generations)
	s.CostUSD = NewStats(costs)

	for k, a := range byCat {
		s.ByCategory[k] = finishBucket(a.n, a.failures, a.scored, a.sim, a.t, a.c)
	}
	for k, a := range byDiff {
		s.ByDifficulty[k] = finishBucket(a.n, a.failures, a.scored, a.sim, a.t, a.c)
	}

	r.Summary = s
	r.Verdicts = Verdicts{
		SimilarityPass: s.Similarity.Mean >= thresholds.MinMeanSimilarity,
		LatencyPass:    s.TotalTimeMs.Mean < thresholds.MaxMeanTimeMs,
		CostPass:       s.CostUSD.Mean < thresholds.MaxMeanCostUSD,
	}
}

func finishBucket(n, failures, scored int, sim, t, c float64) Bucket {
	b := Bucket{Questions: n, Failures: failures}
	if scored > 0 {
		b.MeanSimilarity = sim / float64(scored)
		b.MeanTimeMs = t / float64(scored)
		b.MeanCostUSD = c / float64(scored)
	}
	return b
}

// ModelPricing holds published per-token rates in USD per million
// tokens for the models behind the two remote boundaries.
type ModelPricing struct {
	EmbeddingPerMTok  float64 `json:"embedding_per_mtok" toml:"embedding_per_mtok"`
	PromptPerMTok     float64 `json:"prompt_per_mtok" toml:"prompt_per_mtok"`
	CompletionPerMTok float64 `json:"completion_per_mtok" toml:"completion_per_mtok"`
}

// DefaultModelPricing returns rates for text-embedding-3-small and
// gpt-4o-mini.
func DefaultModelPricing() ModelPricing {
	return ModelPricing{
		EmbeddingPerMTok:  0.02,
		PromptPerMTok:     0.15,
		CompletionPerMTok: 0.60,
	}
}

// Cost estimates the USD cost of one pipeline call.
func (p ModelPricing) Cost(embeddingTokens int, usage TokenUsage) float64 {
	const mtok = 1_000_000
	return float64(embeddingTokens)*p.EmbeddingPerMTok/mtok +
		float64(usage.PromptTokens)*p.PromptPerMTok/mtok +
		float64(usage.CompletionTokens)*p.CompletionPerMTok/mtok
}
