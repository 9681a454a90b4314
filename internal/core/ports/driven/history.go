package driven

import (
	"context"
	"time"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

// RunSummary is a stored evaluation run header.
type RunSummary struct {
	RunID          string
	GeneratedAt    time.Time
	Questions      int
	Failures       int
	MeanSimilarity float64
	MeanTimeMs     float64
	MeanCostUSD    float64
	Passed         bool
}

// HistoryStore persists evaluation runs so quality can be compared
// across corpus refreshes and model changes.
type HistoryStore interface {
	// SaveReport stores a run header and its per-question records.
	SaveReport(ctx context.Context, report *domain.Report) error

	// ListRuns returns the most recent run headers, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// Close releases resources.
	Close() error
}

// ReportWriter renders a finished report to an external artifact.
type ReportWriter interface {
	// Write renders the report and returns the path of the artifact.
	Write(report *domain.Report) (string, error)
}
