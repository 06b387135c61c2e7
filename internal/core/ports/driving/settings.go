package driving

import "github.com/custodia-labs/voxdesk/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey, baseURL string) error

	// SetSpeechProvider configures the speech provider.
	SetSpeechProvider(provider domain.SpeechProvider, key, region string) error

	// SetSystemPrompt stores a custom system prompt. Empty restores the default.
	SetSystemPrompt(prompt string) error

	// SetRAGEnabled stores the default RAG flag for new conversations.
	SetRAGEnabled(enabled bool) error

	// Validate reports missing required configuration.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
