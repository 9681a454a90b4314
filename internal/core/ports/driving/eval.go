package driving

import (
	"context"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

// EvalService replays a fixed question set through the pipeline and
// aggregates quality, latency, and cost metrics.
type EvalService interface {
	// Evaluate runs every question and returns the aggregated report.
	// Per-question failures are recorded, not fatal.
	Evaluate(ctx context.Context, questions []domain.Question) (*domain.Report, error)
}
