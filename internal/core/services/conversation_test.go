package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// mockKnowledgeService returns a fixed answer.
type mockKnowledgeService struct {
	count   int
	answer  domain.Answer
	panics  bool
	asked   []string
	cleared int
}

func (m *mockKnowledgeService) Build(context.Context, []string, domain.RenderMode) (*domain.BuildResult, error) {
	return &domain.BuildResult{}, nil
}

func (m *mockKnowledgeService) Stats() domain.KnowledgeStats {
	return domain.KnowledgeStats{Count: m.count}
}

func (m *mockKnowledgeService) Clear(context.Context) error {
	m.cleared++
	m.count = 0
	return nil
}

func (m *mockKnowledgeService) Search(string, int) []domain.RankedResult { return nil }

func (m *mockKnowledgeService) Answer(_ context.Context, question string) domain.Answer {
	m.asked = append(m.asked, question)
	if m.panics {
		panic("index corrupted")
	}
	return m.answer
}

func (m *mockKnowledgeService) Restore(context.Context) error { return nil }

const defaultSystemPrompt = "You are a helpful AI call agent. You assist customers with their inquiries " +
	"in a professional and friendly manner.\nKeep your responses concise and clear, suitable for spoken conversation."

func TestConversationManager_DefaultSystemPrompt(t *testing.T) {
	m := NewConversationManager(&mockLLMService{}, nil)

	assert.Equal(t, defaultSystemPrompt, m.SystemPrompt())
	assert.False(t, m.RAGEnabled())
	assert.Empty(t, m.History())
}

func TestConversationManager_RespondBuildsMessages(t *testing.T) {
	llm := &mockLLMService{reply: "Hello! How can I help?"}
	m := NewConversationManager(llm, nil)

	reply, err := m.Respond(context.Background(), "Hi")

	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", reply)
	assert.Equal(t, []domain.Turn{
		domain.UserTurn("Hi"),
		domain.AssistantTurn("Hello! How can I help?"),
	}, m.History())

	require.Len(t, llm.chats, 1)
	assert.Equal(t, []driven.ChatMessage{
		{Role: "system", Content: defaultSystemPrompt},
		{Role: "user", Content: "Hi"},
	}, llm.chats[0])
	assert.InDelta(t, 0.7, llm.chatOpts[0].Temperature, 1e-9)
	assert.Equal(t, 500, llm.chatOpts[0].MaxTokens)
}

func TestConversationManager_HistoryAccumulates(t *testing.T) {
	llm := &mockLLMService{reply: "ok"}
	m := NewConversationManager(llm, nil)

	_, err := m.Respond(context.Background(), "first")
	require.NoError(t, err)
	_, err = m.Respond(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, llm.chats, 2)
	assert.Len(t, llm.chats[1], 4)
	assert.Equal(t, "second", llm.chats[1][3].Content)
	assert.Len(t, m.History(), 4)
}

func TestConversationManager_LLMErrorKeepsUserTurn(t *testing.T) {
	llm := &mockLLMService{err: errors.New("timeout")}
	m := NewConversationManager(llm, nil)

	_, err := m.Respond(context.Background(), "Are you there?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, []domain.Turn{domain.UserTurn("Are you there?")}, m.History())
}

func TestConversationManager_NoLLM(t *testing.T) {
	m := NewConversationManager(nil, nil)

	_, err := m.Respond(context.Background(), "Hi")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Empty(t, m.History())
}

func TestConversationManager_ResetRoundTrip(t *testing.T) {
	llm := &mockLLMService{reply: "ok"}
	m := NewConversationManager(llm, nil, WithRAGEnabled(true))
	require.NoError(t, m.SetSystemPrompt("Be terse."))
	_, err := m.Respond(context.Background(), "Hi")
	require.NoError(t, err)

	m.Reset()

	assert.Empty(t, m.History())
	assert.Equal(t, "Be terse.", m.SystemPrompt())
	assert.True(t, m.RAGEnabled())
}

func TestConversationManager_HistoryIsCopy(t *testing.T) {
	m := NewConversationManager(&mockLLMService{reply: "ok"}, nil)
	_, err := m.Respond(context.Background(), "Hi")
	require.NoError(t, err)

	history := m.History()
	history[0].Content = "changed"

	assert.Equal(t, "Hi", m.History()[0].Content)
}

func TestConversationManager_SetSystemPromptRejectsEmpty(t *testing.T) {
	m := NewConversationManager(&mockLLMService{}, nil)

	err := m.SetSystemPrompt("  ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, defaultSystemPrompt, m.SystemPrompt())
}

func TestConversationManager_RAGAugmentsPrompt(t *testing.T) {
	llm := &mockLLMService{reply: "Five days."}
	knowledge := &mockKnowledgeService{count: 3, answer: domain.Answer{Text: "Refunds take five days."}}
	m := NewConversationManager(llm, knowledge, WithRAGEnabled(true))

	_, err := m.Respond(context.Background(), "How long do refunds take?")

	require.NoError(t, err)
	assert.Equal(t, []string{"How long do refunds take?"}, knowledge.asked)

	system := llm.chats[0][0].Content
	assert.True(t, len(system) > len(defaultSystemPrompt))
	assert.Contains(t, system, defaultSystemPrompt)
	assert.Contains(t, system, "Based on the knowledge base, here's relevant information:\nRefunds take five days.")
	assert.Equal(t, defaultSystemPrompt, m.SystemPrompt())
}

func TestConversationManager_RAGSkippedWhenEmptyOrDisabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		count   int
	}{
		{"disabled", false, 3},
		{"empty knowledge base", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLMService{reply: "ok"}
			knowledge := &mockKnowledgeService{count: tt.count, answer: domain.Answer{Text: "unused"}}
			m := NewConversationManager(llm, knowledge, WithRAGEnabled(tt.enabled))

			_, err := m.Respond(context.Background(), "Hi")

			require.NoError(t, err)
			assert.Empty(t, knowledge.asked)
			assert.Equal(t, defaultSystemPrompt, llm.chats[0][0].Content)
		})
	}
}

func TestConversationManager_RAGFailureAddsNote(t *testing.T) {
	llm := &mockLLMService{reply: "I can still help."}
	knowledge := &mockKnowledgeService{count: 1, panics: true}
	m := NewConversationManager(llm, knowledge, WithRAGEnabled(true))

	reply, err := m.Respond(context.Background(), "Hi")

	require.NoError(t, err)
	assert.Equal(t, "I can still help.", reply)
	assert.Equal(t,
		defaultSystemPrompt+"\n\nNote: Knowledge base search failed, using general knowledge.",
		llm.chats[0][0].Content)
}

func TestConversationManager_ClearKnowledgeDisablesRAG(t *testing.T) {
	knowledge := &mockKnowledgeService{count: 2}
	m := NewConversationManager(&mockLLMService{}, knowledge, WithRAGEnabled(true))

	require.NoError(t, m.ClearKnowledge(context.Background()))

	assert.False(t, m.RAGEnabled())
	assert.Equal(t, 1, knowledge.cleared)
}

func TestConversationManager_PromptStore(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{driven.PromptSystem: "Custom from disk."}}

	m := NewConversationManager(&mockLLMService{}, nil)
	m.SetPromptStore(store)
	assert.Equal(t, "Custom from disk.", m.SystemPrompt())

	explicit := NewConversationManager(&mockLLMService{}, nil, WithSystemPrompt("Explicit."))
	explicit.SetPromptStore(store)
	assert.Equal(t, "Explicit.", explicit.SystemPrompt())
}
