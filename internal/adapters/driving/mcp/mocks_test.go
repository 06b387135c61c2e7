package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// mockVoiceService is a mock implementation of driving.VoiceService.
// Query records the exchange on the linked conversation, if any.
type mockVoiceService struct {
	reply        string
	err          error
	questions    []string
	ragSeen      []bool
	conversation *mockConversationService
}

func (m *mockVoiceService) Query(_ context.Context, text string, _ bool) (*domain.Reply, error) {
	m.questions = append(m.questions, text)
	if m.err != nil {
		return nil, m.err
	}
	if m.conversation != nil {
		m.ragSeen = append(m.ragSeen, m.conversation.rag)
		m.conversation.history = append(m.conversation.history,
			domain.UserTurn(text), domain.AssistantTurn(m.reply))
	}
	return &domain.Reply{Text: m.reply}, nil
}

func (m *mockVoiceService) Speak(_ context.Context, _ string) ([]byte, error) {
	return nil, m.err
}

func (m *mockVoiceService) CanSpeak() bool { return false }

func (m *mockVoiceService) AudioFormat() string { return "mp3" }

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	history    []domain.Turn
	prompt     string
	rag        bool
	resets     int
	cleared    int
	clearErr   error
	respondErr error
}

func (m *mockConversationService) Respond(_ context.Context, text string) (string, error) {
	return text, m.respondErr
}

func (m *mockConversationService) Reset() {
	m.resets++
	m.history = nil
}

func (m *mockConversationService) History() []domain.Turn {
	return append([]domain.Turn(nil), m.history...)
}

func (m *mockConversationService) SystemPrompt() string { return m.prompt }

func (m *mockConversationService) SetSystemPrompt(prompt string) error {
	m.prompt = prompt
	return nil
}

func (m *mockConversationService) RAGEnabled() bool { return m.rag }

func (m *mockConversationService) SetRAGEnabled(enabled bool) { m.rag = enabled }

func (m *mockConversationService) ClearKnowledge(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	m.rag = false
	return nil
}

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	results   []domain.RankedResult
	stats     domain.KnowledgeStats
	build     *domain.BuildResult
	buildErr  error
	lastK     int
	lastQuery string
	sources   []string
	mode      domain.RenderMode
}

func (m *mockKnowledgeService) Build(
	_ context.Context,
	sources []string,
	mode domain.RenderMode,
) (*domain.BuildResult, error) {
	m.sources = sources
	m.mode = mode
	return m.build, m.buildErr
}

func (m *mockKnowledgeService) Stats() domain.KnowledgeStats { return m.stats }

func (m *mockKnowledgeService) Clear(_ context.Context) error { return nil }

func (m *mockKnowledgeService) Search(query string, k int) []domain.RankedResult {
	m.lastQuery = query
	m.lastK = k
	if len(m.results) > k {
		return m.results[:k]
	}
	return m.results
}

func (m *mockKnowledgeService) Answer(_ context.Context, _ string) domain.Answer {
	return domain.Answer{}
}

func (m *mockKnowledgeService) Restore(_ context.Context) error { return nil }

// newTestServer builds a server over fresh mocks.
func newTestServer(t *testing.T) (
	*Server, *mockVoiceService, *mockConversationService, *mockKnowledgeService,
) {
	t.Helper()
	conv := &mockConversationService{prompt: "You are a helpful support assistant."}
	voice := &mockVoiceService{reply: "Hello!", conversation: conv}
	knowledge := &mockKnowledgeService{}

	server, err := NewServer(&Ports{Voice: voice, Conversation: conv, Knowledge: knowledge})
	require.NoError(t, err)
	return server, voice, conv, knowledge
}
