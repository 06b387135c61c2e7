package mcp

import (
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Voice answers questions.
	Voice driving.VoiceService

	// Conversation holds the history shared by every MCP client.
	Conversation driving.ConversationService

	// Knowledge builds and searches the knowledge base.
	Knowledge driving.KnowledgeService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Voice == nil:
		return ErrMissingVoiceService
	case p.Conversation == nil:
		return ErrMissingConversationService
	case p.Knowledge == nil:
		return ErrMissingKnowledgeService
	}
	return nil
}
