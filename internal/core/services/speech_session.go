package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Ensure SpeechSession implements the interface.
var _ driving.RecognitionService = (*SpeechSession)(nil)

// DefaultStopWait bounds how long Stop waits for the recogniser to confirm.
const DefaultStopWait = 2 * time.Second

// SpeechSession is the recording state machine: Idle -> Recording ->
// Stopping -> Idle.
//
// Recognition events arrive on the transcriber's goroutines while a UI polls
// CurrentTranscript from another, so all session fields are guarded by mu.
// Each recording gets a new generation; events tagged with an older
// generation are dropped. The session has no timer of its own: callers
// enforce the maximum recording length, see PollRecording.
type SpeechSession struct {
	transcriber driven.SpeechTranscriber
	opts        driven.RecognitionOptions
	stopWait    time.Duration
	now         func() time.Time

	mu         sync.Mutex
	state      domain.RecognitionState
	active     bool
	generation uint64
	handle     domain.RecognitionHandle
	final      string
	partial    string
	lastErr    error
	done       chan struct{}
	session    driven.RecognitionSession
}

// SpeechOption configures a SpeechSession.
type SpeechOption func(*SpeechSession)

// WithStopWait sets the bounded wait for the terminal event on Stop.
func WithStopWait(d time.Duration) SpeechOption {
	return func(s *SpeechSession) {
		if d > 0 {
			s.stopWait = d
		}
	}
}

// WithClock sets the time source used to stamp handles.
func WithClock(now func() time.Time) SpeechOption {
	return func(s *SpeechSession) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSpeechSession creates an idle session. transcriber may be nil, in which
// case Start reports that speech is unavailable.
func NewSpeechSession(
	transcriber driven.SpeechTranscriber,
	opts driven.RecognitionOptions,
	options ...SpeechOption,
) *SpeechSession {
	s := &SpeechSession{
		transcriber: transcriber,
		opts:        opts,
		stopWait:    DefaultStopWait,
		now:         time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Available reports whether a transcriber is configured.
func (s *SpeechSession) Available() bool {
	return s.transcriber != nil
}

// Start begins a recording.
func (s *SpeechSession) Start(ctx context.Context) (domain.RecognitionHandle, error) {
	if s.transcriber == nil {
		return domain.RecognitionHandle{}, fmt.Errorf("%w: no transcriber configured", domain.ErrSpeechUnavailable)
	}

	s.mu.Lock()
	if s.state != domain.RecognitionIdle {
		s.mu.Unlock()
		return domain.RecognitionHandle{}, domain.ErrAlreadyRecording
	}
	s.generation++
	gen := s.generation
	s.state = domain.RecognitionRecording
	s.active = true
	s.final = ""
	s.partial = ""
	s.lastErr = nil
	s.done = make(chan struct{})
	s.session = nil
	s.handle = domain.RecognitionHandle{ID: uuid.New().String(), StartedAt: s.now()}
	handle := s.handle
	s.mu.Unlock()

	logger.Debug("Starting recognition %s (language %s, segmentation %s, initial silence %s)",
		handle.ID, s.opts.Language, s.opts.SegmentationSilence, s.opts.InitialSilence)

	session, err := s.transcriber.StartSession(ctx, s.opts, s.handlers(gen))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.generation == gen {
			s.resetLocked()
			s.final = ""
		}
		logger.Warn("Recognition failed to start: %v", err)
		return domain.RecognitionHandle{}, fmt.Errorf("start recognition: %w", err)
	}
	if s.generation != gen {
		// Stop ran while the recogniser was starting; nobody owns it now.
		go func() {
			if err := session.RequestStop(context.WithoutCancel(ctx)); err != nil {
				logger.Debug("Stopping orphaned recognition: %v", err)
			}
		}()
		return handle, nil
	}
	s.session = session
	return handle, nil
}

// Stop ends the recording and returns its trimmed final text.
//
// Stopping an idle session returns and clears any text left by a recording
// that ended on its own. A handle that names a different recording is
// ignored. If the recogniser fails to stop, the session is forced back to
// Idle and the error returned.
func (s *SpeechSession) Stop(ctx context.Context, handle domain.RecognitionHandle) (string, error) {
	s.mu.Lock()
	if s.state == domain.RecognitionIdle {
		text := s.takeLocked()
		s.mu.Unlock()
		return text, nil
	}
	if s.state != domain.RecognitionRecording || (!handle.IsZero() && handle.ID != s.handle.ID) {
		s.mu.Unlock()
		logger.Debug("Ignoring stop for %q in state %s", handle.ID, s.state)
		return "", nil
	}

	gen := s.generation
	session := s.session
	done := s.done
	needStop := s.active && session != nil
	s.state = domain.RecognitionStopping
	s.mu.Unlock()

	if needStop {
		if err := session.RequestStop(ctx); err != nil {
			s.mu.Lock()
			if s.generation == gen {
				s.resetLocked()
				s.final = ""
				s.generation++
			}
			s.mu.Unlock()
			logger.Warn("Recognition failed to stop: %v", err)
			return "", fmt.Errorf("stop recognition: %w", err)
		}
		s.awaitTerminal(ctx, done)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.takeLocked()
	if s.generation == gen {
		s.resetLocked()
		// Late events from this recording must not leak into the next one.
		s.generation++
	}
	logger.Debug("Recognition stopped with %d characters", len(text))
	return text, nil
}

// awaitTerminal waits for the terminal event, giving up after stopWait.
func (s *SpeechSession) awaitTerminal(ctx context.Context, done <-chan struct{}) {
	timer := time.NewTimer(s.stopWait)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		logger.Warn("Recogniser did not confirm stop within %s; using text so far", s.stopWait)
	case <-ctx.Done():
		logger.Debug("Stop wait cancelled: %v", ctx.Err())
	}
}

// CurrentTranscript combines final and in-flight text for live display.
// The hypothesis is omitted when the final text already contains it.
func (s *SpeechSession) CurrentTranscript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcriptLocked()
}

// Status returns a point-in-time view of the session.
func (s *SpeechSession) Status() domain.RecognitionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.RecognitionStatus{
		State:      s.state,
		Active:     s.active,
		Handle:     s.handle,
		Transcript: s.transcriptLocked(),
		LastError:  s.lastErr,
	}
}

func (s *SpeechSession) handlers(gen uint64) driven.RecognitionHandlers {
	return driven.RecognitionHandlers{
		OnHypothesis: func(text string) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if gen != s.generation || !s.active {
				return
			}
			s.partial = text
		},
		OnFinalized: func(text string) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if gen != s.generation || !s.active {
				return
			}
			text = strings.TrimSpace(text)
			if text == "" || strings.Contains(s.final, text) {
				return
			}
			s.final += text + " "
			logger.Debug("Final recognized: %s", text)
		},
		OnTerminal: func(end domain.RecognitionEnd) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if gen != s.generation || !s.active {
				return
			}
			s.active = false
			if end.Err != nil {
				s.lastErr = end.Err
			}
			close(s.done)
			// A recording that ends on its own returns to Idle; its text is
			// kept until the next Stop or Start.
			if s.state == domain.RecognitionRecording {
				s.state = domain.RecognitionIdle
			}
			logger.Debug("Recognition %s: %v", end.Reason, end.Err)
		},
	}
}

// resetLocked returns the session to Idle. The final text is left for
// takeLocked.
func (s *SpeechSession) resetLocked() {
	if s.active && s.done != nil {
		close(s.done)
	}
	s.state = domain.RecognitionIdle
	s.active = false
	s.partial = ""
	s.session = nil
}

// takeLocked returns the trimmed final text and clears the text fields.
func (s *SpeechSession) takeLocked() string {
	text := strings.TrimSpace(s.final)
	s.final = ""
	s.partial = ""
	return text
}

func (s *SpeechSession) transcriptLocked() string {
	final := strings.TrimSpace(s.final)
	partial := strings.TrimSpace(s.partial)
	switch {
	case final != "" && partial != "" && !strings.Contains(strings.ToLower(final), strings.ToLower(partial)):
		return final + " " + partial
	case final != "":
		return final
	default:
		return partial
	}
}
