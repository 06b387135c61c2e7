package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
)

// MockConversationService implements driving.ConversationService for testing.
type MockConversationService struct {
	Turns []domain.Turn
	RAG   bool
}

func (m *MockConversationService) Respond(_ context.Context, text string) (string, error) {
	return text, nil
}

func (m *MockConversationService) Reset() { m.Turns = nil }

func (m *MockConversationService) History() []domain.Turn {
	return append([]domain.Turn(nil), m.Turns...)
}

func (m *MockConversationService) SystemPrompt() string { return "" }

func (m *MockConversationService) SetSystemPrompt(_ string) error { return nil }

func (m *MockConversationService) RAGEnabled() bool { return m.RAG }

func (m *MockConversationService) SetRAGEnabled(enabled bool) { m.RAG = enabled }

func (m *MockConversationService) ClearKnowledge(_ context.Context) error { return nil }

// MockVoiceService implements driving.VoiceService for testing.
type MockVoiceService struct {
	QueryFunc func(ctx context.Context, text string, withAudio bool) (*domain.Reply, error)
}

func (m *MockVoiceService) Query(ctx context.Context, text string, withAudio bool) (*domain.Reply, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, withAudio)
	}
	return &domain.Reply{Text: "ok"}, nil
}

func (m *MockVoiceService) Speak(_ context.Context, _ string) ([]byte, error) { return nil, nil }

func (m *MockVoiceService) CanSpeak() bool { return false }

func (m *MockVoiceService) AudioFormat() string { return "wav" }

// Verify mocks implement interfaces.
var (
	_ driving.ConversationService = (*MockConversationService)(nil)
	_ driving.VoiceService        = (*MockVoiceService)(nil)
)

func TestNewPorts(t *testing.T) {
	voice := &MockVoiceService{}
	conv := &MockConversationService{}

	ports := NewPorts(voice, conv)

	require.NotNil(t, ports)
	assert.Equal(t, voice, ports.Voice)
	assert.Equal(t, conv, ports.Conversation)
	assert.Nil(t, ports.Knowledge)
	assert.Nil(t, ports.Recognition)
	assert.Equal(t, domain.DefaultAppSettings().Recording, ports.Recording)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"all required set", NewPorts(&MockVoiceService{}, &MockConversationService{}), nil},
		{"missing voice", &Ports{Conversation: &MockConversationService{}}, ErrMissingVoiceService},
		{"missing conversation", &Ports{Voice: &MockVoiceService{}}, ErrMissingConversationService},
		{"empty", &Ports{}, ErrMissingVoiceService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
