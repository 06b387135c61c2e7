// Package tui provides an interactive terminal user interface for voxdesk.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Voice answers questions.
	Voice driving.VoiceService

	// Conversation holds the history and RAG flag.
	Conversation driving.ConversationService

	// Knowledge reports knowledge base statistics. Optional.
	Knowledge driving.KnowledgeService

	// Recognition captures speech. Optional; ctrl+r reports it missing.
	Recognition driving.RecognitionService

	// Recording is the polling policy for speech capture.
	Recording domain.RecordingSettings
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(voice driving.VoiceService, conversation driving.ConversationService) *Ports {
	return &Ports{
		Voice:        voice,
		Conversation: conversation,
		Recording:    domain.DefaultAppSettings().Recording,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Voice == nil {
		return ErrMissingVoiceService
	}
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	return nil
}
