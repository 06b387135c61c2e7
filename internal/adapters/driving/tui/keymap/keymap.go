// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Send submits the typed question.
	Send key.Binding

	// Record starts or stops a voice recording.
	Record key.Binding

	// Reset clears the conversation.
	Reset key.Binding

	// ToggleRAG switches knowledge base grounding on or off.
	ToggleRAG key.Binding

	// Up scrolls the transcript up.
	Up key.Binding

	// Down scrolls the transcript down.
	Down key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Record: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "record"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "reset"),
		),
		ToggleRAG: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "rag"),
		),
		Up: key.NewBinding(
			key.WithKeys("pgup", "ctrl+up"),
			key.WithHelp("pgup", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+down"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Record, k.Help, k.Quit}
}

// RecordingHelp returns keybindings shown while recording.
func (k *KeyMap) RecordingHelp() []key.Binding {
	stop := key.NewBinding(
		key.WithKeys(k.Record.Keys()...),
		key.WithHelp(k.Record.Help().Key, "stop"),
	)
	return []key.Binding{stop, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Record, k.Reset, k.ToggleRAG},
		{k.Up, k.Down, k.Back},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
