// Package sqlite persists evaluation run history so quality can be
// compared across corpus refreshes and model changes.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/izu-labs/izuchat/internal/adapters/driven/history/sqlite/migrations"
	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
)

var _ driven.HistoryStore = (*Store)(nil)

// Store is a SQLite-backed evaluation history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the history database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveReport stores the run header and all per-question records in one
// transaction.
func (s *Store) SaveReport(ctx context.Context, report *domain.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO eval_runs
			(run_id, generated_at, questions, failures, mean_similarity,
			 mean_time_ms, mean_cost_usd, total_cost_usd, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.RunID, report.GeneratedAt, report.Summary.Questions,
		report.Summary.Failures, report.Summary.Similarity.Mean,
		report.Summary.TotalTimeMs.Mean, report.Summary.CostUSD.Mean,
		report.Summary.TotalCostUSD, report.Verdicts.Pass())
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO eval_records
			(run_id, position, query, answer, error, category, difficulty,
			 semantic_similarity, keyword_overlap, retrieval_time_ms,
			 generation_time_ms, total_time_ms, tokens_used, cost_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, rec := range report.Records {
		if _, err := stmt.ExecContext(ctx, report.RunID, i, rec.Query,
			rec.Answer, rec.Error, string(rec.Category), string(rec.Difficulty),
			rec.SemanticSimilarity, rec.KeywordOverlap, rec.RetrievalMs,
			rec.GenerationMs, rec.TotalMs, rec.TokensUsed, rec.CostUSD); err != nil {
			return fmt.Errorf("saving record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRuns returns the most recent run headers, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]driven.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, generated_at, questions, failures,
		       mean_similarity, mean_time_ms, mean_cost_usd, passed
		FROM eval_runs
		ORDER BY generated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []driven.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run driven.RunSummary
		if err := rows.Scan(&run.RunID, &run.GeneratedAt, &run.Questions,
			&run.Failures, &run.MeanSimilarity, &run.MeanTimeMs,
			&run.MeanCostUSD, &run.Passed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// GetRecords returns the stored per-question records of a run in
// evaluation order.
func (s *Store) GetRecords(ctx context.Context, runID string) ([]domain.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT query, answer, error, category, difficulty,
		       semantic_similarity, keyword_overlap, retrieval_time_ms,
		       generation_time_ms, total_time_ms, tokens_used, cost_usd
		FROM eval_records
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.AnswerRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.AnswerRecord
		var answer, errMsg, category, difficulty sql.NullString
		if err := rows.Scan(&rec.Query, &answer, &errMsg, &category,
			&difficulty, &rec.SemanticSimilarity, &rec.KeywordOverlap,
			&rec.RetrievalMs, &rec.GenerationMs, &rec.TotalMs,
			&rec.TokensUsed, &rec.CostUSD); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Answer = answer.String
		rec.Error = errMsg.String
		rec.Category = domain.Category(category.String)
		rec.Difficulty = domain.Difficulty(difficulty.String)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return records, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}
