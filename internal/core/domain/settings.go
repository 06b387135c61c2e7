package domain

import (
	"fmt"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAzure is an Azure OpenAI deployment.
	AIProviderAzure AIProvider = "azure"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAzure, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAzure || p == AIProviderAnthropic
}

// RequiresBaseURL returns true if this provider has no usable default endpoint.
func (p AIProvider) RequiresBaseURL() bool {
	return p == AIProviderAzure
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAzure:
		return "Azure OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// SpeechProvider identifies the speech recognition and synthesis backend.
type SpeechProvider string

// Available speech providers.
const (
	// SpeechProviderNone disables voice input and output.
	SpeechProviderNone SpeechProvider = "none"

	// SpeechProviderAzure is Azure Cognitive Services Speech.
	SpeechProviderAzure SpeechProvider = "azure"

	// SpeechProviderOpenAI uses Whisper for transcription and OpenAI TTS.
	SpeechProviderOpenAI SpeechProvider = "openai"
)

// IsValid returns true if the speech provider is recognised.
func (p SpeechProvider) IsValid() bool {
	switch p {
	case SpeechProviderNone, SpeechProviderAzure, SpeechProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p SpeechProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p SpeechProvider) Description() string {
	switch p {
	case SpeechProviderNone:
		return "Disabled"
	case SpeechProviderAzure:
		return "Azure Speech (live microphone)"
	case SpeechProviderOpenAI:
		return "OpenAI (Whisper + TTS)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the model name, or the deployment name for Azure.
	Model string

	// BaseURL is the API endpoint (Ollama host, Azure endpoint).
	BaseURL string

	// APIKey is the API key (for OpenAI/Azure/Anthropic).
	APIKey string

	// APIVersion is the Azure OpenAI API version.
	APIVersion string

	// Temperature is the sampling temperature for chat replies.
	Temperature float64

	// MaxTokens caps the length of a reply.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	if l.Provider.RequiresBaseURL() && l.BaseURL == "" {
		return false
	}
	return true
}

// SpeechSettings holds speech provider configuration.
type SpeechSettings struct {
	// Provider is the speech backend.
	Provider SpeechProvider

	// Key is the subscription or API key.
	Key string

	// Region is the Azure region.
	Region string

	// Language is the recognition locale.
	Language string

	// Voice is the synthesis voice name.
	Voice string

	// SegmentationSilence ends an utterance after this much silence.
	SegmentationSilence time.Duration

	// InitialSilence is how long to wait for speech before giving up.
	InitialSilence time.Duration
}

// IsConfigured returns true if the speech provider is set up.
func (s SpeechSettings) IsConfigured() bool {
	switch s.Provider {
	case SpeechProviderAzure:
		return s.Key != "" && s.Region != ""
	case SpeechProviderOpenAI:
		return s.Key != ""
	default:
		return false
	}
}

// RecordingSettings holds the caller-side recording policy.
type RecordingSettings struct {
	// MaxDuration is the auto-stop ceiling for one recording.
	MaxDuration time.Duration

	// PollInterval is how often callers refresh the live transcript.
	PollInterval time.Duration

	// StopWait bounds how long Stop waits for the recogniser to confirm.
	StopWait time.Duration
}

// AssistantSettings holds conversation behaviour.
type AssistantSettings struct {
	// SystemPrompt overrides the default system prompt when non-empty.
	SystemPrompt string

	// RAGEnabled augments replies with knowledge base answers.
	RAGEnabled bool

	// TopK is the number of chunks placed in the retrieval context.
	TopK int
}

// LoaderSettings holds document loading configuration.
type LoaderSettings struct {
	// FetchTimeout bounds a plain HTTP fetch.
	FetchTimeout time.Duration

	// BodyWait bounds the wait for the document body in the headless browser.
	BodyWait time.Duration

	// SettleDelay is the extra wait for client-side rendering.
	SettleDelay time.Duration

	// UserAgent is sent with every fetch.
	UserAgent string

	// RequestsPerSecond throttles URL fetches. Zero disables throttling.
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Speech holds speech provider settings.
	Speech SpeechSettings

	// Recording holds recording policy settings.
	Recording RecordingSettings

	// Assistant holds conversation settings.
	Assistant AssistantSettings

	// Loader holds document loading settings.
	Loader LoaderSettings
}

// DefaultUserAgent is a desktop browser user agent; some sites refuse
// requests without one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultAppSettings returns settings with sensible defaults.
// Providers are left unconfigured; keys come from the environment or the
// settings command.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    AIProviderAzure,
			Model:       "gpt-4",
			APIVersion:  "2024-02-15-preview",
			Temperature: 0.7,
			MaxTokens:   500,
		},
		Speech: SpeechSettings{
			Provider:            SpeechProviderAzure,
			Language:            "en-US",
			Voice:               "en-US-JennyNeural",
			SegmentationSilence: 500 * time.Millisecond,
			InitialSilence:      5 * time.Second,
		},
		Recording: RecordingSettings{
			MaxDuration:  10 * time.Second,
			PollInterval: 300 * time.Millisecond,
			StopWait:     2 * time.Second,
		},
		Assistant: AssistantSettings{
			RAGEnabled: false,
			TopK:       3,
		},
		Loader: LoaderSettings{
			FetchTimeout:      10 * time.Second,
			BodyWait:          10 * time.Second,
			SettleDelay:       3 * time.Second,
			UserAgent:         DefaultUserAgent,
			RequestsPerSecond: 2,
		},
	}
}

// Validate reports the configuration keys required by the selected
// providers that are missing. It returns nil when everything needed is set.
func (s AppSettings) Validate() error {
	var missing []string

	switch s.LLM.Provider {
	case AIProviderAzure:
		if s.LLM.APIKey == "" {
			missing = append(missing, "AZURE_OPENAI_KEY")
		}
		if s.LLM.BaseURL == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
	case AIProviderOpenAI:
		if s.LLM.APIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case AIProviderAnthropic:
		if s.LLM.APIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case AIProviderOllama:
	default:
		return fmt.Errorf("%w: unknown LLM provider %q", ErrInvalidInput, s.LLM.Provider)
	}

	switch s.Speech.Provider {
	case SpeechProviderAzure:
		if s.Speech.Key == "" {
			missing = append(missing, "AZURE_SPEECH_KEY")
		}
		if s.Speech.Region == "" {
			missing = append(missing, "AZURE_SPEECH_REGION")
		}
	case SpeechProviderOpenAI:
		if s.Speech.Key == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case SpeechProviderNone, "":
	default:
		return fmt.Errorf("%w: unknown speech provider %q", ErrInvalidInput, s.Speech.Provider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// AllLLMProviders returns providers that support chat completion.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderAzure,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// AllSpeechProviders returns the selectable speech backends.
func AllSpeechProviders() []SpeechProvider {
	return []SpeechProvider{
		SpeechProviderAzure,
		SpeechProviderOpenAI,
		SpeechProviderNone,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAzure:     "gpt-4",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added without
// modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// paragraph chunking only.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"separator": "\n\n",
			},
		},
	}
}
