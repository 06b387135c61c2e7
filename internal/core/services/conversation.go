package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Ensure ConversationManager implements the interfaces.
var (
	_ driving.ConversationService = (*ConversationManager)(nil)
	_ driven.PromptStoreAware     = (*ConversationManager)(nil)
)

// ConversationManager owns one conversation: history, system prompt and the
// RAG flag. It is single-writer and does no internal locking.
//
// History grows without bound until Reset; nothing is evicted.
type ConversationManager struct {
	llm       driven.LLMService
	knowledge driving.KnowledgeService
	prompts   driven.PromptStore
	opts      driven.ChatOptions

	systemPrompt string
	customPrompt bool
	ragEnabled   bool
	history      []domain.Turn
}

// ConversationOption configures a ConversationManager.
type ConversationOption func(*ConversationManager)

// WithSystemPrompt sets the initial system prompt. Empty keeps the default.
func WithSystemPrompt(prompt string) ConversationOption {
	return func(m *ConversationManager) {
		if prompt != "" {
			m.systemPrompt = prompt
			m.customPrompt = true
		}
	}
}

// WithRAGEnabled sets the initial RAG flag.
func WithRAGEnabled(enabled bool) ConversationOption {
	return func(m *ConversationManager) {
		m.ragEnabled = enabled
	}
}

// WithChatOptions sets the sampling options for replies.
func WithChatOptions(opts driven.ChatOptions) ConversationOption {
	return func(m *ConversationManager) {
		m.opts = opts
	}
}

// NewConversationManager creates a conversation. knowledge may be nil, in
// which case RAG has no effect.
func NewConversationManager(
	llm driven.LLMService,
	knowledge driving.KnowledgeService,
	opts ...ConversationOption,
) *ConversationManager {
	m := &ConversationManager{
		llm:          llm,
		knowledge:    knowledge,
		systemPrompt: loadPrompt(nil, driven.PromptSystem),
		opts: driven.ChatOptions{
			Temperature: 0.7,
			MaxTokens:   500,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetPromptStore sets the prompt store. Unless a custom system prompt was
// supplied, the stored system prompt is reloaded from it.
func (m *ConversationManager) SetPromptStore(store driven.PromptStore) {
	m.prompts = store
	if !m.customPrompt {
		m.systemPrompt = loadPrompt(store, driven.PromptSystem)
	}
}

// Respond sends userText with the conversation so far and returns the reply.
func (m *ConversationManager) Respond(ctx context.Context, userText string) (string, error) {
	if m.llm == nil {
		return "", fmt.Errorf("%w: no LLM configured", domain.ErrLLMUnavailable)
	}

	m.history = append(m.history, domain.UserTurn(userText))

	prompt := m.effectivePrompt(ctx, userText)

	messages := make([]driven.ChatMessage, 0, len(m.history)+1)
	messages = append(messages, driven.ChatMessage{Role: domain.RoleSystem.String(), Content: prompt})
	for _, turn := range m.history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role.String(), Content: turn.Content})
	}

	logger.Debug("Chat request: %d messages, model %s", len(messages), m.llm.ModelName())
	start := time.Now()
	reply, err := m.llm.Chat(ctx, messages, m.opts)
	logger.Timed("chat reply", start)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	m.history = append(m.history, domain.AssistantTurn(reply))
	return reply, nil
}

// effectivePrompt returns the system prompt for one turn. When RAG is on and
// the knowledge base holds chunks, the retrieval answer is spliced in; the
// stored prompt is never changed.
func (m *ConversationManager) effectivePrompt(ctx context.Context, userText string) string {
	if !m.ragEnabled || m.knowledge == nil || m.knowledge.Stats().Count == 0 {
		return m.systemPrompt
	}

	answer, err := m.retrieve(ctx, userText)
	if err != nil {
		logger.Warn("Knowledge base search failed: %v", err)
		return fmt.Sprintf(loadPrompt(m.prompts, driven.PromptRAGFailed), m.systemPrompt)
	}

	logger.Debug("Augmenting prompt with %d source chunks", len(answer.Sources))
	return fmt.Sprintf(loadPrompt(m.prompts, driven.PromptRAGAugment), m.systemPrompt, answer.Text)
}

// retrieve runs the retrieval answer, converting a panic in the knowledge
// path into an error so the turn can continue without augmentation.
func (m *ConversationManager) retrieve(ctx context.Context, question string) (answer domain.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("retrieval panicked: %v", r)
		}
	}()
	return m.knowledge.Answer(ctx, question), nil
}

// Reset empties history. System prompt and RAG flag are untouched.
func (m *ConversationManager) Reset() {
	m.history = nil
}

// History returns a copy of the conversation so far.
func (m *ConversationManager) History() []domain.Turn {
	out := make([]domain.Turn, len(m.history))
	copy(out, m.history)
	return out
}

// SystemPrompt returns the stored system prompt.
func (m *ConversationManager) SystemPrompt() string {
	return m.systemPrompt
}

// SetSystemPrompt replaces the stored system prompt.
func (m *ConversationManager) SetSystemPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: system prompt is empty", domain.ErrInvalidInput)
	}
	m.systemPrompt = prompt
	m.customPrompt = true
	return nil
}

// RAGEnabled reports whether replies consult the knowledge base.
func (m *ConversationManager) RAGEnabled() bool {
	return m.ragEnabled
}

// SetRAGEnabled toggles knowledge base augmentation.
func (m *ConversationManager) SetRAGEnabled(enabled bool) {
	m.ragEnabled = enabled
}

// ClearKnowledge empties the knowledge base and disables RAG.
func (m *ConversationManager) ClearKnowledge(ctx context.Context) error {
	m.ragEnabled = false
	if m.knowledge == nil {
		return nil
	}
	return m.knowledge.Clear(ctx)
}
