// Package report renders finished evaluation reports to files: a JSON
// artifact carrying the full report, and a markdown summary for humans.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
)

var (
	_ driven.ReportWriter = (*JSONWriter)(nil)
	_ driven.ReportWriter = (*MarkdownWriter)(nil)
)

// timestampLayout names report files by run time, newest sorting last.
const timestampLayout = "20060102_150405"

// JSONWriter writes the full report as an indented JSON file.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates a writer targeting dir.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Write renders the report and returns the artifact path.
func (w *JSONWriter) Write(report *domain.Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling report: %w", err)
	}

	name := fmt.Sprintf("eval_report_%s.json", report.GeneratedAt.Format(timestampLayout))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// MarkdownWriter writes a human-readable summary of the report.
type MarkdownWriter struct {
	dir string
}

// NewMarkdownWriter creates a writer targeting dir.
func NewMarkdownWriter(dir string) *MarkdownWriter {
	return &MarkdownWriter{dir: dir}
}

// Write renders the summary and returns the artifact path.
func (w *MarkdownWriter) Write(report *domain.Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	name := fmt.Sprintf("eval_summary_%s.md", report.GeneratedAt.Format(timestampLayout))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(render(report)), 0644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	return path, nil
}

func render(report *domain.Report) string {
	var b strings.Builder
	s := report.Summary

	fmt.Fprintf(&b, "# Evaluation Report\n\n")
	fmt.Fprintf(&b, "- Run: %s\n", report.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Questions: %d (%d failed)\n\n", s.Questions, s.Failures)

	fmt.Fprintf(&b, "## Verdict: %s\n\n", verdictWord(report.Verdicts.Pass()))
	fmt.Fprintf(&b, "| Check | Target | Actual | Result |\n")
	fmt.Fprintf(&b, "|---|---|---|---|\n")
	fmt.Fprintf(&b, "| Mean similarity | >= %.2f | %.3f | %s |\n",
		report.Thresholds.MinMeanSimilarity, s.Similarity.Mean,
		verdictWord(report.Verdicts.SimilarityPass))
	fmt.Fprintf(&b, "| Mean response time | < %.0f ms | %.0f ms | %s |\n",
		report.Thresholds.MaxMeanTimeMs, s.TotalTimeMs.Mean,
		verdictWord(report.Verdicts.LatencyPass))
	fmt.Fprintf(&b, "| Mean cost | < $%.4f | $%.4f | %s |\n\n",
		report.Thresholds.MaxMeanCostUSD, s.CostUSD.Mean,
		verdictWord(report.Verdicts.CostPass))

	fmt.Fprintf(&b, "## Quality\n\n")
	fmt.Fprintf(&b, "| Metric | Mean | Median | P95 | Min | Max |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	writeStatsRow(&b, "Semantic similarity", s.Similarity, "%.3f")
	writeStatsRow(&b, "Keyword overlap", s.KeywordOverlap, "%.3f")

	fmt.Fprintf(&b, "\n## Performance\n\n")
	fmt.Fprintf(&b, "| Metric | Mean | Median | P95 | Min | Max |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	writeStatsRow(&b, "Total time (ms)", s.TotalTimeMs, "%.0f")
	writeStatsRow(&b, "Retrieval time (ms)", s.RetrievalMs, "%.0f")
	writeStatsRow(&b, "Generation time (ms)", s.GenerationMs, "%.0f")

	fmt.Fprintf(&b, "\n## Cost\n\n")
	fmt.Fprintf(&b, "- Total: $%.4f\n", s.TotalCostUSD)
	fmt.Fprintf(&b, "- Mean per question: $%.4f\n", s.CostUSD.Mean)

	if len(s.ByCategory) > 0 {
		fmt.Fprintf(&b, "\n## By Category\n\n")
		writeBuckets(&b, categoryRows(s.ByCategory))
	}
	if len(s.ByDifficulty) > 0 {
		fmt.Fprintf(&b, "\n## By Difficulty\n\n")
		writeBuckets(&b, difficultyRows(s.ByDifficulty))
	}

	if failures := failedRecords(report.Records); len(failures) > 0 {
		fmt.Fprintf(&b, "\n## Failures\n\n")
		for _, rec := range failures {
			fmt.Fprintf(&b, "- %q: %s\n", rec.Query, rec.Error)
		}
	}

	return b.String()
}

func verdictWord(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func writeStatsRow(b *strings.Builder, label string, s domain.Stats, format string) {
	row := fmt.Sprintf("| %%s | %s | %s | %s | %s | %s |\n",
		format, format, format, format, format)
	fmt.Fprintf(b, row, label, s.Mean, s.Median, s.P95, s.Min, s.Max)
}

type bucketRow struct {
	label  string
	bucket domain.Bucket
}

func categoryRows(m map[domain.Category]domain.Bucket) []bucketRow {
	rows := make([]bucketRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, bucketRow{label: string(k), bucket: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].label < rows[j].label })
	return rows
}

func difficultyRows(m map[domain.Difficulty]domain.Bucket) []bucketRow {
	rows := make([]bucketRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, bucketRow{label: string(k), bucket: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].label < rows[j].label })
	return rows
}

func writeBuckets(b *strings.Builder, rows []bucketRow) {
	fmt.Fprintf(b, "| Group | Questions | Failures | Mean similarity | Mean time (ms) | Mean cost |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	for _, r := range rows {
		label := r.label
		if label == "" {
			label = "(unlabelled)"
		}
		fmt.Fprintf(b, "| %s | %d | %d | %.3f | %.0f | $%.4f |\n",
			label, r.bucket.Questions, r.bucket.Failures,
			r.bucket.MeanSimilarity, r.bucket.MeanTimeMs, r.bucket.MeanCostUSD)
	}
}

func failedRecords(records []domain.AnswerRecord) []domain.AnswerRecord {
	var failed []domain.AnswerRecord
	for _, rec := range records {
		if rec.Failed() {
			failed = append(failed, rec)
		}
	}
	return failed
}
