package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Ensure VoiceAssistant implements the interface.
var _ driving.VoiceService = (*VoiceAssistant)(nil)

// VoiceAssistant answers queries as text and, optionally, speech.
type VoiceAssistant struct {
	conversation driving.ConversationService
	synth        driven.SpeechSynthesizer
}

// NewVoiceAssistant creates a voice assistant. synth may be nil.
func NewVoiceAssistant(conversation driving.ConversationService, synth driven.SpeechSynthesizer) *VoiceAssistant {
	return &VoiceAssistant{
		conversation: conversation,
		synth:        synth,
	}
}

// Query answers text. A synthesis failure is reported in Reply.AudioErr and
// does not fail the query.
func (v *VoiceAssistant) Query(ctx context.Context, text string, withAudio bool) (*domain.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	answer, err := v.conversation.Respond(ctx, text)
	if err != nil {
		return nil, err
	}

	reply := &domain.Reply{Text: answer}
	if !withAudio {
		return reply, nil
	}

	audio, err := v.Speak(ctx, answer)
	if err != nil {
		logger.Warn("Speech synthesis failed: %v", err)
		reply.AudioErr = err
		return reply, nil
	}
	reply.Audio = audio
	return reply, nil
}

// Speak synthesises text.
func (v *VoiceAssistant) Speak(ctx context.Context, text string) ([]byte, error) {
	if v.synth == nil {
		return nil, fmt.Errorf("%w: no speech synthesiser configured", domain.ErrSpeechUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: nothing to speak", domain.ErrInvalidInput)
	}
	audio, err := v.synth.Synthesize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	logger.Debug("Synthesised %d bytes of %s audio", len(audio), v.synth.Format())
	return audio, nil
}

// CanSpeak reports whether a synthesiser is configured.
func (v *VoiceAssistant) CanSpeak() bool {
	return v.synth != nil
}

// AudioFormat returns the synthesiser's audio container, or "" without one.
func (v *VoiceAssistant) AudioFormat() string {
	if v.synth == nil {
		return ""
	}
	return v.synth.Format()
}
