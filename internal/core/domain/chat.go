package domain

import "unicode/utf8"

// MaxQuestionLen is the maximum accepted chat message length in runes.
const MaxQuestionLen = 500

// ChatRequest is a single question to the pipeline.
type ChatRequest struct {
	// Message is the user question. Required, at most MaxQuestionLen runes.
	Message string `json:"message"`

	// Language selects the system instruction language. Defaults to
	// Turkish when empty.
	Language Language `json:"language,omitempty"`

	// ConversationID is an opaque caller-supplied identifier. A fresh
	// one is minted when empty.
	ConversationID string `json:"conversation_id,omitempty"`
}

// Validate checks the request against the pipeline's input rules.
// Length is counted in runes, not bytes; Turkish text is multibyte
// in UTF-8 and must not hit the limit early.
func (r ChatRequest) Validate() error {
	if r.Message == "" || isBlank(r.Message) {
		return ErrEmptyQuery
	}
	if utf8.RuneCountInString(r.Message) > MaxQuestionLen {
		return ErrQueryTooLong
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// TokenUsage records token counts reported by a remote model call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// ChatAnswer is the pipeline's reply to a ChatRequest.
type ChatAnswer struct {
	// Answer is the generated text, returned verbatim from the model.
	Answer string `json:"answer"`

	// Sources cite the retrieved passages in rank order.
	Sources []Source `json:"sources"`

	// ConversationID echoes or mints the conversation identifier.
	ConversationID string `json:"conversation_id"`

	// RetrievalMs is the wall-clock time of the retrieval phase
	// (query embedding plus index search).
	RetrievalMs float64 `json:"retrieval_ms"`

	// GenerationMs is the wall-clock time of the generation phase.
	GenerationMs float64 `json:"generation_ms"`

	// TotalMs is the end-to-end pipeline time.
	TotalMs float64 `json:"response_time_ms"`

	// EmbeddingTokens counts tokens billed for the query embedding.
	EmbeddingTokens int `json:"embedding_tokens,omitempty"`

	// Usage is the generation model's reported token usage.
	Usage TokenUsage `json:"usage"`
}
