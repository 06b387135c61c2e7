package driving

import (
	"context"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// ConversationService owns one conversation: its history, system prompt and
// whether replies are grounded in the knowledge base.
// It is single-writer: callers must not invoke it from several goroutines
// at once.
type ConversationService interface {
	// Respond appends userText to the history, asks the LLM for a reply and
	// appends it. On LLM failure the error is returned and the user turn is
	// kept.
	Respond(ctx context.Context, userText string) (string, error)

	// Reset empties history. System prompt and RAG flag are untouched.
	Reset()

	// History returns a copy of the conversation so far.
	History() []domain.Turn

	// SystemPrompt returns the stored system prompt.
	SystemPrompt() string

	// SetSystemPrompt replaces the stored system prompt.
	// An empty prompt is rejected with domain.ErrInvalidInput.
	SetSystemPrompt(prompt string) error

	// RAGEnabled reports whether replies consult the knowledge base.
	RAGEnabled() bool

	// SetRAGEnabled toggles knowledge base augmentation.
	SetRAGEnabled(enabled bool)

	// ClearKnowledge empties the knowledge base and disables RAG.
	ClearKnowledge(ctx context.Context) error
}

// VoiceService is the query entry point used by UIs: a reply as text plus
// optional synthesised audio.
type VoiceService interface {
	// Query answers text and, when withAudio is set and synthesis is
	// available, attaches audio. Synthesis failure does not fail the query.
	Query(ctx context.Context, text string, withAudio bool) (*domain.Reply, error)

	// Speak synthesises arbitrary text.
	Speak(ctx context.Context, text string) ([]byte, error)

	// CanSpeak reports whether a synthesiser is configured.
	CanSpeak() bool

	// AudioFormat returns the synthesiser's audio container.
	AudioFormat() string
}
