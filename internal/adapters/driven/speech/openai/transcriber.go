package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Ensure types implement the interfaces.
var (
	_ driven.SpeechTranscriber  = (*Transcriber)(nil)
	_ driven.RecognitionSession = (*fileSession)(nil)
)

// Transcriber transcribes a recorded audio file with Whisper. It has no
// microphone access; each session covers the whole file set by UseFile and
// ends on its own once the transcript arrives.
type Transcriber struct {
	client *goopenai.Client

	mu   sync.Mutex
	path string
}

// NewTranscriber creates a Whisper transcriber.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Transcriber{client: client}, nil
}

// UseFile sets the audio file transcribed by the next session.
func (t *Transcriber) UseFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.path = path
}

// StartSession uploads the audio file and reports the transcript as one
// finalized utterance followed by a stopped terminal event.
func (t *Transcriber) StartSession(
	ctx context.Context,
	opts driven.RecognitionOptions,
	handlers driven.RecognitionHandlers,
) (driven.RecognitionSession, error) {
	t.mu.Lock()
	path := t.path
	t.mu.Unlock()

	if path == "" {
		return nil, fmt.Errorf("%w: OpenAI speech needs an audio file (no microphone input)", domain.ErrSpeechUnavailable)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("audio file: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &fileSession{cancel: cancel, handlers: handlers}
	go s.run(runCtx, t.client, goopenai.AudioRequest{
		Model:    goopenai.Whisper1,
		FilePath: path,
		Language: language(opts.Language),
	})
	return s, nil
}

type fileSession struct {
	cancel   context.CancelFunc
	handlers driven.RecognitionHandlers

	once sync.Once
}

func (s *fileSession) run(ctx context.Context, client *goopenai.Client, req goopenai.AudioRequest) {
	defer s.cancel()

	resp, err := client.CreateTranscription(ctx, req)
	switch {
	case errors.Is(err, context.Canceled):
		s.end(domain.RecognitionEnd{Reason: domain.RecognitionEndStopped})
	case err != nil:
		s.end(domain.RecognitionEnd{
			Reason: domain.RecognitionEndCanceled,
			Err:    fmt.Errorf("%w: %w", domain.ErrRecognitionCanceled, err),
		})
	default:
		logger.Debug("Whisper transcribed %s (%d characters)", req.FilePath, len(resp.Text))
		if s.handlers.OnFinalized != nil {
			s.handlers.OnFinalized(resp.Text)
		}
		s.end(domain.RecognitionEnd{Reason: domain.RecognitionEndStopped})
	}
}

func (s *fileSession) end(end domain.RecognitionEnd) {
	s.once.Do(func() {
		if s.handlers.OnTerminal != nil {
			s.handlers.OnTerminal(end)
		}
	})
}

// RequestStop abandons the upload. The terminal event follows from run.
func (s *fileSession) RequestStop(_ context.Context) error {
	s.cancel()
	return nil
}
