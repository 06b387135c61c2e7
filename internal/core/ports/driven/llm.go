// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides text completion for retrieval answers and chat replies.
// Cancellation of an in-flight call is not supported by callers; request
// timeouts are the implementation's responsibility.
//
// Implementations include:
//   - OpenAI and Azure OpenAI
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation. A leading "system" message,
	// when present, carries the system prompt.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model or deployment in use.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// LLMFactory builds an LLMService from settings. The knowledge service binds
// a fresh client on every build so a bad configuration fails the build.
type LLMFactory interface {
	CreateLLM(settings LLMConfig) (LLMService, error)
}

// LLMConfig is the subset of settings an LLM client needs.
type LLMConfig struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	APIVersion string
}
