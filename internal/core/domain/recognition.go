package domain

import "time"

// RecognitionState is the lifecycle state of a speech session.
type RecognitionState int

// Recognition states. A session moves Idle -> Recording -> Stopping -> Idle.
const (
	RecognitionIdle RecognitionState = iota
	RecognitionRecording
	RecognitionStopping
)

// String returns the string representation.
func (s RecognitionState) String() string {
	switch s {
	case RecognitionIdle:
		return "idle"
	case RecognitionRecording:
		return "recording"
	case RecognitionStopping:
		return "stopping"
	default:
		return unknownDescription
	}
}

// RecognitionHandle identifies one recording episode.
type RecognitionHandle struct {
	ID        string
	StartedAt time.Time
}

// IsZero returns true for the empty handle.
func (h RecognitionHandle) IsZero() bool {
	return h.ID == ""
}

// RecognitionEndReason says why a recognition session terminated.
type RecognitionEndReason string

// Termination reasons.
const (
	RecognitionEndStopped  RecognitionEndReason = "stopped"
	RecognitionEndCanceled RecognitionEndReason = "canceled"
)

// RecognitionEnd is delivered once when the recogniser stops or cancels.
type RecognitionEnd struct {
	Reason RecognitionEndReason

	// Err is set for cancellations caused by a failure (transport, auth).
	Err error
}

// RecognitionStatus is a point-in-time view of a speech session.
type RecognitionStatus struct {
	State      RecognitionState
	Active     bool
	Handle     RecognitionHandle
	Transcript string
	LastError  error
}
