//go:build azurespeech

package azure

import (
	"context"
	"fmt"
	"sync"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Available reports whether Azure Speech support is compiled in.
const Available = true

// Ensure types implement the interfaces.
var (
	_ driven.SpeechTranscriber  = (*Transcriber)(nil)
	_ driven.RecognitionSession = (*session)(nil)
)

// Transcriber recognises speech from the default microphone.
type Transcriber struct {
	cfg Config
}

// NewTranscriber creates a microphone transcriber.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Transcriber{cfg: cfg}, nil
}

// StartSession opens the microphone and starts continuous recognition.
func (t *Transcriber) StartSession(
	_ context.Context,
	opts driven.RecognitionOptions,
	handlers driven.RecognitionHandlers,
) (driven.RecognitionSession, error) {
	config, err := speech.NewSpeechConfigFromSubscription(t.cfg.Key, t.cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("%w: speech config: %w", domain.ErrSpeechUnavailable, err)
	}
	if opts.Language != "" {
		if err := config.SetSpeechRecognitionLanguage(opts.Language); err != nil {
			config.Close()
			return nil, fmt.Errorf("set recognition language: %w", err)
		}
	}
	if opts.SegmentationSilence > 0 {
		if err := config.SetPropertyByString(propSegmentationSilence, millis(opts.SegmentationSilence)); err != nil {
			config.Close()
			return nil, fmt.Errorf("set segmentation silence: %w", err)
		}
	}
	if opts.InitialSilence > 0 {
		if err := config.SetPropertyByString(propInitialSilence, millis(opts.InitialSilence)); err != nil {
			config.Close()
			return nil, fmt.Errorf("set initial silence: %w", err)
		}
	}

	audioConfig, err := audio.NewAudioConfigFromDefaultMicrophoneInput()
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("%w: open microphone: %w", domain.ErrSpeechUnavailable, err)
	}

	recognizer, err := speech.NewSpeechRecognizerFromConfig(config, audioConfig)
	if err != nil {
		audioConfig.Close()
		config.Close()
		return nil, fmt.Errorf("%w: create recognizer: %w", domain.ErrSpeechUnavailable, err)
	}

	s := &session{
		recognizer:  recognizer,
		audioConfig: audioConfig,
		config:      config,
		handlers:    handlers,
	}
	s.bind()

	if err := <-recognizer.StartContinuousRecognitionAsync(); err != nil {
		s.release()
		return nil, fmt.Errorf("start recognition: %w", err)
	}
	logger.Debug("Azure recognition started (%s, %s)", t.cfg.Region, opts.Language)
	return s, nil
}

// session owns the native recognizer for one recording.
type session struct {
	recognizer  *speech.SpeechRecognizer
	audioConfig *audio.AudioConfig
	config      *speech.SpeechConfig
	handlers    driven.RecognitionHandlers

	endOnce     sync.Once
	releaseOnce sync.Once
}

func (s *session) bind() {
	s.recognizer.Recognizing(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()
		if s.handlers.OnHypothesis != nil {
			s.handlers.OnHypothesis(event.Result.Text)
		}
	})
	s.recognizer.Recognized(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()
		if event.Result.Reason != common.RecognizedSpeech {
			return
		}
		if s.handlers.OnFinalized != nil {
			s.handlers.OnFinalized(event.Result.Text)
		}
	})
	s.recognizer.Canceled(func(event speech.SpeechRecognitionCanceledEventArgs) {
		defer event.Close()
		end := domain.RecognitionEnd{Reason: domain.RecognitionEndCanceled}
		if event.Reason == common.Error {
			end.Err = fmt.Errorf("%w: %s", domain.ErrRecognitionCanceled, event.ErrorDetails)
		}
		s.terminate(end)
	})
	s.recognizer.SessionStopped(func(event speech.SessionEventArgs) {
		defer event.Close()
		s.terminate(domain.RecognitionEnd{Reason: domain.RecognitionEndStopped})
	})
}

// terminate delivers the first terminal event and frees native resources.
func (s *session) terminate(end domain.RecognitionEnd) {
	s.endOnce.Do(func() {
		if s.handlers.OnTerminal != nil {
			s.handlers.OnTerminal(end)
		}
		// Closing from inside an SDK callback deadlocks the native thread.
		go s.release()
	})
}

// RequestStop asks the service to stop; SessionStopped follows.
func (s *session) RequestStop(ctx context.Context) error {
	select {
	case err := <-s.recognizer.StopContinuousRecognitionAsync():
		if err != nil {
			return fmt.Errorf("stop recognition: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *session) release() {
	s.releaseOnce.Do(func() {
		s.recognizer.Close()
		s.audioConfig.Close()
		s.config.Close()
	})
}
