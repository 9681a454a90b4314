package services

import (
	"strings"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

// contextDelimiter separates passage blocks in the assembled prompt.
const contextDelimiter = "\n---\n"

// sourceLabel prefixes each passage with its page title. "Kaynak" is
// Turkish for "source"; the corpus and the bulk of the queries are
// Turkish, and the generation model handles the label fine either way.
const sourceLabel = "Kaynak: "

// BuildContext renders retrieved passages into the single prompt block
// handed to the generation model. Passages appear in input order, which
// is rank order: chat models attend most reliably to content near the
// start of the window, so higher-scoring passages go first. No
// deduplication or truncation happens here; passages are bounded by the
// upstream chunking step.
func BuildContext(results domain.RetrievalResult) string {
	if len(results) == 0 {
		return ""
	}
	blocks := make([]string, len(results))
	for i, r := range results {
		var b strings.Builder
		b.WriteString(sourceLabel)
		b.WriteString(r.Passage.Metadata.Title)
		b.WriteString("\n")
		b.WriteString(r.Passage.Content)
		blocks[i] = b.String()
	}
	return strings.Join(blocks, contextDelimiter)
}
