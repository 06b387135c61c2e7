package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name     string
		log      func(string, ...any)
		expected string
	}{
		{"debug", Debug, "[DEBUG] loaded 3 chunks\n"},
		{"info", Info, "[INFO] loaded 3 chunks\n"},
		{"warn", Warn, "[WARN] loaded 3 chunks\n"},
		{"error", Error, "[ERROR] loaded 3 chunks\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := reset(t)
			SetVerbose(true)

			tt.log("loaded %d chunks", 3)

			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")
	Timed("hidden", time.Now())

	assert.Empty(t, buf.String())
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Error("stop failed: %v", "timeout")

	assert.Equal(t, "[ERROR] stop failed: timeout\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Section("Knowledge Build")

	assert.Equal(t, "\n=== Knowledge Build ===\n", buf.String())
}

func TestTimed(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Timed("rank", time.Now().Add(-1500*time.Millisecond))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[DEBUG] rank took "))
	assert.Contains(t, out, "1.5s")
}
