// Package jsonfile loads the passage corpus and evaluation question
// sets from the JSON artifacts produced by the offline scraping and
// chunking pipeline.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/logger"
)

// LoadCorpus reads the chunks file: a JSON array of passage records,
// each with content and metadata. Passages are validated and
// fingerprinted but never reordered or dropped: position i in the file
// is row i of the similarity index, and dedup already happened in the
// offline build step. Duplicates found here are only reported, since
// they mean the index was built from a stale corpus.
func LoadCorpus(path string) (*domain.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var passages []domain.Passage
	if err := json.Unmarshal(data, &passages); err != nil {
		return nil, fmt.Errorf("decode corpus file %s: %w", path, err)
	}

	for i := range passages {
		if err := passages[i].Validate(); err != nil {
			return nil, fmt.Errorf("corpus record %d: %w", i, err)
		}
		if passages[i].Metadata.ContentHash == "" {
			passages[i].Metadata.ContentHash = passages[i].Hash()
		}
	}

	if _, dupes := domain.Dedupe(passages); dupes > 0 {
		logger.Warn("Corpus contains %d duplicate passages; re-run the dedup build step and rebuild the index", dupes)
	}

	logger.Info("Loaded %d passages from %s", len(passages), path)
	return domain.NewCorpus(passages), nil
}

// LoadQuestions reads an evaluation question set: a JSON array of
// {query, expected_answer, keywords, category, difficulty, language}.
func LoadQuestions(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode question file %s: %w", path, err)
	}

	for i, q := range questions {
		if q.Query == "" {
			return nil, fmt.Errorf("question %d has no query", i)
		}
	}
	return questions, nil
}
