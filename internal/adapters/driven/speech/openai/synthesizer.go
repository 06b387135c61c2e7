package openai

import (
	"context"
	"fmt"
	"io"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure Synthesizer implements the interface.
var _ driven.SpeechSynthesizer = (*Synthesizer)(nil)

// Synthesizer converts text to MP3 with OpenAI TTS.
type Synthesizer struct {
	client *goopenai.Client
	voice  goopenai.SpeechVoice
}

// NewSynthesizer creates a TTS synthesizer.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{client: client, voice: voice(cfg.Voice)}, nil
}

// Format returns "mp3".
func (s *Synthesizer) Format() string {
	return "mp3"
}

// Synthesize returns MP3 audio for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.TTSModel1,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("openai speech: read audio: %w", err)
	}
	return audio, nil
}
