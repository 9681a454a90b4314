package driven

import (
	"context"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures a chat completion.
type ChatOptions struct {
	// MaxTokens bounds the generated output length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// ChatResult is a completed generation with its reported token usage.
type ChatResult struct {
	// Content is the generated text, unmodified.
	Content string

	// Usage is the token accounting reported by the service.
	Usage domain.TokenUsage
}

// ChatModel produces grounded answers via a remote chat-completion
// model. Failures surface as *domain.RemoteServiceError; adapters never
// retry on their own.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini)
//   - Ollama (local models)
type ChatModel interface {
	// Chat sends the message exchange and returns the completion.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*ChatResult, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
