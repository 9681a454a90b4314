package domain

import (
	"crypto/md5" //nolint:gosec // Content fingerprint for dedup, not security.
	"encoding/hex"
	"fmt"
	"strings"
)

// Category classifies university content. The set is fixed by the
// upstream scraping pipeline.
type Category string

// Known content categories.
const (
	CategoryAcademicProgram Category = "academic_program"
	CategoryFacultyMember   Category = "faculty_member"
	CategoryAdmission       Category = "admission"
	CategoryFeeStructure    Category = "fee_structure"
	CategoryEvent           Category = "event"
	CategoryNews            Category = "news"
	CategoryResearch        Category = "research"
	CategoryStudentService  Category = "student_service"
	CategoryDepartment      Category = "department"
	CategoryGeneral         Category = "general"
)

// Language identifies the language of a passage or query.
type Language string

// Supported languages.
const (
	LanguageTurkish Language = "tr"
	LanguageEnglish Language = "en"
)

// PassageMetadata is the provenance attached to a passage. The shape is
// fixed; the upstream chunking step guarantees title and url are present
// for every chunk it emits.
type PassageMetadata struct {
	// Title is the human-readable page title the chunk came from.
	Title string `json:"title"`

	// URL is the source page address.
	URL string `json:"url"`

	// Category is the content category assigned by the scraper.
	Category Category `json:"category,omitempty"`

	// Language is the language of the chunk content.
	Language Language `json:"language,omitempty"`

	// ContentHash is the md5 fingerprint of the content, used by the
	// corpus build step to drop duplicate chunks.
	ContentHash string `json:"content_hash,omitempty"`
}

// Passage is a bounded-length chunk of source text plus provenance.
// It is the atomic unit of retrieval.
type Passage struct {
	// Content is the chunk text. Never empty for a valid passage.
	Content string `json:"content"`

	// Metadata is the provenance of the chunk.
	Metadata PassageMetadata `json:"metadata"`
}

// Validate reports whether the passage is usable for retrieval.
func (p Passage) Validate() error {
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("passage %q: %w", p.Metadata.Title, ErrEmptyPassage)
	}
	return nil
}

// Hash returns the md5 content fingerprint as lowercase hex. This is the
// same fingerprint the corpus build pipeline computes for dedup.
func (p Passage) Hash() string {
	sum := md5.Sum([]byte(p.Content)) //nolint:gosec // Fingerprint only.
	return hex.EncodeToString(sum[:])
}

// Corpus is an ordered, immutable collection of passages. Position i in
// the corpus corresponds exactly to row i of the similarity index built
// from it; the ordering must never change after the index is built.
type Corpus struct {
	passages []Passage
}

// NewCorpus wraps the given passages. The slice is not copied; callers
// must not mutate it afterwards.
func NewCorpus(passages []Passage) *Corpus {
	return &Corpus{passages: passages}
}

// Len returns the number of passages.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.passages)
}

// At returns the passage at position i.
func (c *Corpus) At(i int) (Passage, error) {
	if c == nil || i < 0 || i >= len(c.passages) {
		return Passage{}, fmt.Errorf("corpus position %d of %d: %w", i, c.Len(), ErrNotFound)
	}
	return c.passages[i], nil
}

// Passages returns the underlying ordered slice. Read-only by contract.
func (c *Corpus) Passages() []Passage {
	if c == nil {
		return nil
	}
	return c.passages
}

// Dedupe removes passages whose content hash was already seen, keeping
// the first occurrence. It returns the kept passages in original order
// and the number dropped. This mirrors the dedup the scraper pipeline
// applies when building the corpus.
func Dedupe(passages []Passage) ([]Passage, int) {
	seen := make(map[string]bool, len(passages))
	kept := make([]Passage, 0, len(passages))
	for _, p := range passages {
		h := p.Metadata.ContentHash
		if h == "" {
			h = p.Hash()
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		kept = append(kept, p)
	}
	return kept, len(passages) - len(kept)
}
