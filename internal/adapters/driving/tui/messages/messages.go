// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Question string
}

// ReplyReceived carries the assistant's reply to a question.
type ReplyReceived struct {
	Question string
	Reply    *domain.Reply
	Err      error
}

// RecordingStarted signals that speech capture began.
type RecordingStarted struct {
	Handle domain.RecognitionHandle
	Err    error
}

// RecordingProgress carries the live transcript of an active recording.
type RecordingProgress struct {
	Transcript string
	Elapsed    time.Duration
}

// RecordingFinished carries the final transcript of a recording.
type RecordingFinished struct {
	Text        string
	AutoStopped bool
	Elapsed     time.Duration
	Err         error
}

// KnowledgeLoaded carries knowledge base statistics.
type KnowledgeLoaded struct {
	Stats domain.KnowledgeStats
}

// ConversationReset signals the history was cleared.
type ConversationReset struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
