//go:build !azurespeech

package azure

import (
	"context"

	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Available reports whether Azure Speech support is compiled in.
const Available = false

var (
	_ driven.SpeechTranscriber = (*Transcriber)(nil)
	_ driven.SpeechSynthesizer = (*Synthesizer)(nil)
)

// Transcriber is unavailable without the azurespeech build tag.
type Transcriber struct{}

// NewTranscriber returns domain.ErrSpeechUnavailable.
func NewTranscriber(_ Config) (*Transcriber, error) {
	return nil, errNotBuilt()
}

// StartSession returns domain.ErrSpeechUnavailable.
func (t *Transcriber) StartSession(
	_ context.Context,
	_ driven.RecognitionOptions,
	_ driven.RecognitionHandlers,
) (driven.RecognitionSession, error) {
	return nil, errNotBuilt()
}

// Synthesizer is unavailable without the azurespeech build tag.
type Synthesizer struct{}

// NewSynthesizer returns domain.ErrSpeechUnavailable.
func NewSynthesizer(_ Config) (*Synthesizer, error) {
	return nil, errNotBuilt()
}

// Format returns "wav".
func (s *Synthesizer) Format() string {
	return "wav"
}

// Synthesize returns domain.ErrSpeechUnavailable.
func (s *Synthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return nil, errNotBuilt()
}
