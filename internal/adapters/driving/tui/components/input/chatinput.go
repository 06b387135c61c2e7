// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/styles"
)

const (
	defaultPlaceholder = "Ask a question, or press ctrl+r to speak..."
	charLimit          = 1000
)

// ChatInput wraps a bubbles textinput for composing questions.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewChatInput creates a new chat input component.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = defaultPlaceholder
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = 60

	return &ChatInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init initialises the chat input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the chat input.
func (c *ChatInput) View() string {
	label := c.styles.User.Render("You: ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// SetPlaceholder replaces the hint shown when the input is empty.
// Empty restores the default.
func (c *ChatInput) SetPlaceholder(text string) {
	if text == "" {
		text = defaultPlaceholder
	}
	c.textinput.Placeholder = text
}

// Placeholder returns the current hint.
func (c *ChatInput) Placeholder() string {
	return c.textinput.Placeholder
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	// Account for label and padding
	inputWidth := width - 10
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
}
