package messages

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewChat, "chat"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestReplyReceived(t *testing.T) {
	msg := ReplyReceived{
		Question: "Where is my parcel?",
		Reply:    &domain.Reply{Text: "It ships tomorrow."},
	}

	assert.Equal(t, "Where is my parcel?", msg.Question)
	assert.Equal(t, "It ships tomorrow.", msg.Reply.Text)
	assert.NoError(t, msg.Err)
}

func TestRecordingFinished(t *testing.T) {
	err := errors.New("microphone unplugged")
	msg := RecordingFinished{Text: "hello", AutoStopped: true, Elapsed: 10 * time.Second, Err: err}

	assert.Equal(t, "hello", msg.Text)
	assert.True(t, msg.AutoStopped)
	assert.Equal(t, 10*time.Second, msg.Elapsed)
	assert.Equal(t, err, msg.Err)
}
