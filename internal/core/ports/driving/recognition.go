package driving

import (
	"context"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// RecognitionService controls live speech capture.
// All methods are safe to call from a polling goroutine while recognition
// events arrive on another.
type RecognitionService interface {
	// Start begins a recording. Returns domain.ErrAlreadyRecording if one is
	// active.
	Start(ctx context.Context) (domain.RecognitionHandle, error)

	// Stop ends the recording and returns its trimmed final text. Stopping
	// an idle session returns any leftover text and never fails.
	Stop(ctx context.Context, handle domain.RecognitionHandle) (string, error)

	// CurrentTranscript combines final and in-flight text for live display.
	CurrentTranscript() string

	// Status returns a point-in-time view of the session.
	Status() domain.RecognitionStatus

	// Available reports whether a transcriber is configured.
	Available() bool
}
