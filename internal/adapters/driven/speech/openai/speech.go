// Package openai provides speech adapters on the OpenAI audio API: Whisper
// transcription of recorded audio files and text-to-speech.
package openai

import (
	"errors"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultVoice   = goopenai.VoiceAlloy
	DefaultTimeout = 60 * time.Second
)

// Config holds OpenAI audio API settings.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// Voice is the TTS voice. Names the API does not know fall back to alloy.
	Voice string

	// Timeout bounds each request (default: 60s).
	Timeout time.Duration
}

func newClient(cfg Config) (*goopenai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai speech: API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return goopenai.NewClientWithConfig(clientCfg), nil
}

// voice maps a configured voice to one the TTS API accepts. Locale-style
// names such as "en-US-JennyNeural" belong to other providers.
func voice(name string) goopenai.SpeechVoice {
	switch v := goopenai.SpeechVoice(strings.ToLower(name)); v {
	case goopenai.VoiceAlloy, goopenai.VoiceEcho, goopenai.VoiceFable,
		goopenai.VoiceOnyx, goopenai.VoiceNova, goopenai.VoiceShimmer:
		return v
	default:
		return DefaultVoice
	}
}

// language reduces a locale such as "en-US" to the ISO-639-1 code Whisper
// expects.
func language(locale string) string {
	code, _, _ := strings.Cut(locale, "-")
	if len(code) != 2 {
		return ""
	}
	return strings.ToLower(code)
}
