// Package azure provides live microphone transcription and speech synthesis
// through Azure Cognitive Services Speech.
//
// The Speech SDK links against the native Speech runtime, so the real
// implementation is only compiled with the azurespeech build tag:
//
//	go build -tags azurespeech ./...
//
// Without the tag every operation returns domain.ErrSpeechUnavailable.
package azure

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// DefaultVoice is used when no synthesis voice is configured.
const DefaultVoice = "en-US-JennyNeural"

// Property names understood by the Speech service.
const (
	propSegmentationSilence = "Speech_SegmentationSilenceTimeoutMs"
	propInitialSilence      = "SpeechServiceConnection_InitialSilenceTimeoutMs"
)

// Config holds Azure Speech credentials and voice settings.
type Config struct {
	// Key is the Speech resource subscription key.
	Key string

	// Region is the Speech resource region, e.g. "westeurope".
	Region string

	// Voice is the synthesis voice, e.g. "en-US-JennyNeural".
	Voice string
}

// Validate reports missing credentials.
func (c Config) Validate() error {
	if c.Key == "" || c.Region == "" {
		return fmt.Errorf("%w: Azure Speech key and region are required", domain.ErrMissingConfig)
	}
	return nil
}

// millis formats a duration as whole milliseconds for SDK properties.
func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}

func errNotBuilt() error {
	return fmt.Errorf("%w: built without the azurespeech tag", domain.ErrSpeechUnavailable)
}
