package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenCmd_Flags(t *testing.T) {
	for _, name := range []string{"file", "max", "ask", "audio"} {
		assert.NotNil(t, listenCmd.Flags().Lookup(name), name)
	}
}

func TestListenCmd_NotConfigured(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.recognition.available = false

	_, err := runCLI(t, "", "listen")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings speech")
}

func TestListenCmd_PrintsTranscript(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCLI(t, "", "listen")

	require.NoError(t, err)
	assert.Contains(t, out, "You said: where is my order")
	assert.Empty(t, ts.voice.questions)
	assert.Equal(t, 1, ts.recognition.starts)
	assert.Equal(t, 1, ts.recognition.stops)
}

func TestListenCmd_InterruptedThenAsk(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	interruptRecordings(t, ts.recognition)

	out, err := runCLI(t, "", "listen", "--ask")

	require.NoError(t, err)
	assert.Contains(t, out, "You said: where is my order")
	assert.Contains(t, out, "Assistant: Refunds take 5 days.")
	assert.Equal(t, []string{"where is my order"}, ts.voice.questions)
	assert.Equal(t, 1, ts.recognition.stops)
}

func TestListenCmd_NothingHeard(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.recognition.final = ""
	ts.recognition.lastErr = errors.New("no match")

	out, err := runCLI(t, "", "listen")

	require.NoError(t, err)
	assert.Contains(t, out, "Recognition error: no match")
	assert.Contains(t, out, "No speech recognised.")
}

func TestListenCmd_FileAndAsk(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.voice.audio = []byte("mp3")
	audioPath := filepath.Join(t.TempDir(), "reply.mp3")

	out, err := runCLI(t, "", "listen", "--file", "question.wav", "--ask", "--audio", audioPath)

	require.NoError(t, err)
	assert.Equal(t, "question.wav", ts.audioFiles.path)
	assert.Contains(t, out, "Assistant: Refunds take 5 days.")
	assert.Equal(t, []string{"where is my order"}, ts.voice.questions)
	data, err := os.ReadFile(audioPath)
	require.NoError(t, err)
	assert.Equal(t, "mp3", string(data))
}

func TestListenCmd_FileNeedsFileSource(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	audioFiles = nil

	_, err := runCLI(t, "", "listen", "-f", "question.wav")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai")
}
