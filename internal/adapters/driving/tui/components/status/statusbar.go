// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateRecording State = "recording"
	StateError     State = "error"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	width   int

	rag        bool
	chunkCount int

	elapsed     time.Duration
	maxDuration time.Duration
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateRecording:
		return s.styles.Recording.Render(fmt.Sprintf("● Recording %.1fs / %.0fs",
			s.elapsed.Seconds(), s.maxDuration.Seconds()))
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateReady:
	}

	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	return s.styles.Muted.Render(s.knowledgeSummary())
}

func (s *Bar) knowledgeSummary() string {
	if !s.rag {
		return "RAG off"
	}
	return fmt.Sprintf("RAG on · %d chunks", s.chunkCount)
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateRecording {
		bindings = s.keymap.RecordingHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetKnowledge records whether answers are grounded and how many chunks
// the knowledge base holds.
func (s *Bar) SetKnowledge(rag bool, chunks int) {
	s.rag = rag
	s.chunkCount = chunks
}

// SetRecording records how long the current recording has run.
func (s *Bar) SetRecording(elapsed, maxDuration time.Duration) {
	s.elapsed = elapsed
	s.maxDuration = maxDuration
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.elapsed = 0
}
