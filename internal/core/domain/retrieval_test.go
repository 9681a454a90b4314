package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSnippetShortContentUnchanged(t *testing.T) {
	sp := ScoredPassage{Passage: Passage{Content: "kisa icerik"}}
	assert.Equal(t, "kisa icerik", sp.Snippet())
}

func TestSnippetTruncatesLongContent(t *testing.T) {
	sp := ScoredPassage{Passage: Passage{Content: strings.Repeat("a", 300)}}

	got := sp.Snippet()

	assert.Equal(t, strings.Repeat("a", snippetLen)+"...", got)
}

func TestSnippetKeepsMultibyteContentValid(t *testing.T) {
	// The leading ASCII byte shifts every 2-byte rune to an odd offset,
	// so the byte cutoff lands mid-rune and the snippet must back up to
	// a boundary instead of emitting a broken sequence.
	sp := ScoredPassage{Passage: Passage{Content: "a" + strings.Repeat("ş", 200)}}

	got := sp.Snippet()

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	body := strings.TrimSuffix(got, "...")
	assert.Equal(t, "a"+strings.Repeat("ş", (snippetLen-1)/2), body)
}

func TestSortedDetectsOrderViolations(t *testing.T) {
	sorted := RetrievalResult{{Score: 0.9}, {Score: 0.9}, {Score: 0.4}}
	assert.True(t, sorted.Sorted())

	unsorted := RetrievalResult{{Score: 0.4}, {Score: 0.9}}
	assert.False(t, unsorted.Sorted())
}

func TestToSource(t *testing.T) {
	sp := ScoredPassage{
		Passage: Passage{
			Content: "Yillik ucret 75000 TL'dir.",
			Metadata: PassageMetadata{
				Title: "Ucretler",
				URL:   "https://www.izu.edu.tr/ucretler",
			},
		},
		Row:   3,
		Score: 0.83,
	}

	src := sp.ToSource()

	assert.Equal(t, "Ucretler", src.Title)
	assert.Equal(t, "https://www.izu.edu.tr/ucretler", src.URL)
	assert.Equal(t, float32(0.83), src.Score)
	assert.Equal(t, "Yillik ucret 75000 TL'dir.", src.Snippet)
}
