package domain

import "unicode/utf8"

// ScoredPassage is a passage matched by similarity search, together
// with its corpus row and similarity score.
type ScoredPassage struct {
	// Passage is the matched chunk.
	Passage Passage

	// Row is the corpus position (and index row) of the passage.
	Row int

	// Score is the cosine similarity between the query vector and the
	// passage vector, in [-1, 1] for unit vectors.
	Score float32
}

// RetrievalResult is an ordered sequence of scored passages, sorted by
// descending score. Created per query and discarded after use.
type RetrievalResult []ScoredPassage

// Sorted reports whether scores are non-increasing in rank order.
func (r RetrievalResult) Sorted() bool {
	for i := 1; i < len(r); i++ {
		if r[i].Score > r[i-1].Score {
			return false
		}
	}
	return true
}

// Source is a citation returned alongside a generated answer.
type Source struct {
	// Title is the page title of the cited passage.
	Title string `json:"title"`

	// URL is the source page address.
	URL string `json:"url"`

	// Score is the retrieval similarity score.
	Score float32 `json:"score"`

	// Snippet is a short preview of the passage content.
	Snippet string `json:"snippet"`
}

// snippetLen bounds source snippets in API responses.
const snippetLen = 200

// Snippet returns a bounded preview of the passage content. The cut
// falls on a rune boundary so multibyte content stays valid UTF-8.
func (s ScoredPassage) Snippet() string {
	content := s.Passage.Content
	if len(content) <= snippetLen {
		return content
	}
	cut := snippetLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}

// ToSource converts a scored passage into an answer citation.
func (s ScoredPassage) ToSource() Source {
	return Source{
		Title:   s.Passage.Metadata.Title,
		URL:     s.Passage.Metadata.URL,
		Score:   s.Score,
		Snippet: s.Snippet(),
	}
}
