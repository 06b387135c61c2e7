//go:build azurespeech

package azure

import (
	"context"
	"fmt"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure Synthesizer implements the interface.
var _ driven.SpeechSynthesizer = (*Synthesizer)(nil)

// Synthesizer renders text to 16kHz mono WAV with a neural voice.
type Synthesizer struct {
	cfg Config
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	return &Synthesizer{cfg: cfg}, nil
}

// Format returns "wav".
func (s *Synthesizer) Format() string {
	return "wav"
}

// Synthesize returns WAV audio for text. Nothing is played locally.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	config, err := speech.NewSpeechConfigFromSubscription(s.cfg.Key, s.cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("%w: speech config: %w", domain.ErrSpeechUnavailable, err)
	}
	defer config.Close()
	if err := config.SetSpeechSynthesisVoiceName(s.cfg.Voice); err != nil {
		return nil, fmt.Errorf("set voice: %w", err)
	}
	if err := config.SetSpeechSynthesisOutputFormat(common.Riff16Khz16BitMonoPcm); err != nil {
		return nil, fmt.Errorf("set output format: %w", err)
	}

	// A nil audio config keeps the audio in the result instead of the speaker.
	synthesizer, err := speech.NewSpeechSynthesizerFromConfig(config, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create synthesizer: %w", domain.ErrSpeechUnavailable, err)
	}
	defer synthesizer.Close()

	var outcome speech.SpeechSynthesisOutcome
	select {
	case outcome = <-synthesizer.SpeakTextAsync(text):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer outcome.Close()
	if outcome.Error != nil {
		return nil, fmt.Errorf("synthesize: %w", outcome.Error)
	}

	if outcome.Result.Reason != common.SynthesizingAudioCompleted {
		details, err := speech.NewCancellationDetailsFromSpeechSynthesisResult(outcome.Result)
		if err != nil {
			return nil, fmt.Errorf("synthesis canceled: %v", outcome.Result.Reason)
		}
		return nil, fmt.Errorf("synthesis canceled: %s", details.ErrorDetails)
	}
	return outcome.Result.AudioData, nil
}
