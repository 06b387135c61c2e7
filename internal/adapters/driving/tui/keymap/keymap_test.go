package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		key     string
	}{
		{"quit", km.Quit, "ctrl+c"},
		{"help", km.Help, "f1"},
		{"back", km.Back, "esc"},
		{"send", km.Send, "enter"},
		{"record", km.Record, "ctrl+r"},
		{"reset", km.Reset, "ctrl+l"},
		{"rag", km.ToggleRAG, "ctrl+g"},
		{"up", km.Up, "pgup"},
		{"down", km.Down, "pgdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.binding.Keys(), tt.key)
		})
	}
}

func TestDefaultKeyMap_PrintableKeysAreFree(t *testing.T) {
	km := DefaultKeyMap()

	// Every printable character must reach the chat input.
	for _, b := range []key.Binding{km.Quit, km.Help, km.Send, km.Record, km.Reset, km.ToggleRAG} {
		for _, k := range b.Keys() {
			assert.Greater(t, len(k), 1, "binding %q shadows typing", k)
		}
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "send", help[0].Help().Desc)
	assert.Equal(t, "record", help[1].Help().Desc)
}

func TestKeyMap_RecordingHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.RecordingHelp()

	require.Len(t, help, 2)
	assert.Equal(t, "stop", help[0].Help().Desc)
	assert.Equal(t, km.Record.Keys(), help[0].Keys())
	assert.Equal(t, "record", km.Record.Help().Desc)
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.FullHelp()

	require.Len(t, help, 3)
	assert.Len(t, help[0], 4)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+r", km.Record))
	assert.True(t, Matches("pgup", km.Up))
	assert.False(t, Matches("r", km.Record))
	assert.False(t, Matches("", km.Send))
}
