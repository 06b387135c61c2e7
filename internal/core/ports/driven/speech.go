package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// RecognitionOptions configures a continuous recognition session.
type RecognitionOptions struct {
	// Language is the recognition locale, e.g. "en-US".
	Language string

	// SegmentationSilence ends an utterance after this much silence.
	SegmentationSilence time.Duration

	// InitialSilence is how long the recogniser waits for the first speech.
	InitialSilence time.Duration
}

// RecognitionHandlers receive recognition events. Implementations invoke
// them from their own goroutines; handlers must be safe for concurrent use.
type RecognitionHandlers struct {
	// OnHypothesis receives the current guess for the unfinished utterance.
	OnHypothesis func(text string)

	// OnFinalized receives a completed utterance.
	OnFinalized func(text string)

	// OnTerminal is called when the session is cancelled or stopped.
	OnTerminal func(end domain.RecognitionEnd)
}

// SpeechTranscriber starts live transcription sessions.
type SpeechTranscriber interface {
	// StartSession opens the audio input and begins continuous recognition.
	// Events are delivered to handlers until a terminal event fires.
	StartSession(ctx context.Context, opts RecognitionOptions, handlers RecognitionHandlers) (RecognitionSession, error)
}

// RecognitionSession is one running recognition episode.
type RecognitionSession interface {
	// RequestStop asks the recogniser to stop. The terminal event follows
	// asynchronously.
	RequestStop(ctx context.Context) error
}

// SpeechSynthesizer converts text to audio bytes.
type SpeechSynthesizer interface {
	// Synthesize returns encoded audio for text.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// Format returns the audio container, e.g. "mp3" or "wav".
	Format() string
}
