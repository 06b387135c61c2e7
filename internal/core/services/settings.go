package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMAPIVersion  = "llm.api_version"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"

	keySpeechProvider     = "speech.provider"
	keySpeechKey          = "speech.key"
	keySpeechRegion       = "speech.region"
	keySpeechLanguage     = "speech.language"
	keySpeechVoice        = "speech.voice"
	keySpeechSegmentation = "speech.segmentation_silence"
	keySpeechInitial      = "speech.initial_silence"

	keyRecordingMax      = "recording.max_duration"
	keyRecordingPoll     = "recording.poll_interval"
	keyRecordingStopWait = "recording.stop_wait"

	keyAssistantPrompt = "assistant.system_prompt"
	keyAssistantRAG    = "assistant.rag_enabled"
	keyAssistantTopK   = "assistant.top_k"

	keyLoaderFetchTimeout = "loader.fetch_timeout"
	keyLoaderBodyWait     = "loader.body_wait"
	keyLoaderSettleDelay  = "loader.settle_delay"
	keyLoaderUserAgent    = "loader.user_agent"
	keyLoaderRPS          = "loader.requests_per_second"

	keyPipelineProcessors = "pipeline.processors"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvAzureSpeechKey       = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion    = "AZURE_SPEECH_REGION"
	EnvAzureOpenAIKey       = "AZURE_OPENAI_KEY"
	EnvAzureOpenAIEndpoint  = "AZURE_OPENAI_ENDPOINT"
	EnvAzureOpenAIDeploy    = "AZURE_OPENAI_DEPLOYMENT"
	EnvAzureOpenAIVersion   = "AZURE_OPENAI_API_VERSION"
	EnvSpeechLanguage       = "SPEECH_LANGUAGE"
	EnvTTSVoice             = "TTS_VOICE_NAME"
	EnvOpenAIKey            = "OPENAI_API_KEY"
	EnvAnthropicKey         = "ANTHROPIC_API_KEY"
	EnvOllamaHost           = "OLLAMA_HOST"
	defaultOllamaBaseURL    = "http://localhost:11434"
	processorConfigKeyCount = 3
)

// SettingsService manages application settings.
//
// Stored values come from the ConfigStore; environment variables, when set,
// take precedence for the provider currently selected. Mutating methods
// work on stored values only, so secrets taken from the environment are
// never written to the config file.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup. Tests use it to avoid the
// process environment.
func (s *SettingsService) SetEnvLookup(getenv func(string) string) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	s.getenv = getenv
}

// Get retrieves current application settings with environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads settings from the config store, filling defaults.
func (s *SettingsService) stored() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	return &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			APIVersion:  s.getString(keyLLMAPIVersion, d.LLM.APIVersion),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
		},
		Speech: domain.SpeechSettings{
			Provider:            s.getSpeechProvider(d.Speech.Provider),
			Key:                 s.configStore.GetString(keySpeechKey),
			Region:              s.configStore.GetString(keySpeechRegion),
			Language:            s.getString(keySpeechLanguage, d.Speech.Language),
			Voice:               s.getString(keySpeechVoice, d.Speech.Voice),
			SegmentationSilence: s.getDuration(keySpeechSegmentation, d.Speech.SegmentationSilence),
			InitialSilence:      s.getDuration(keySpeechInitial, d.Speech.InitialSilence),
		},
		Recording: domain.RecordingSettings{
			MaxDuration:  s.getDuration(keyRecordingMax, d.Recording.MaxDuration),
			PollInterval: s.getDuration(keyRecordingPoll, d.Recording.PollInterval),
			StopWait:     s.getDuration(keyRecordingStopWait, d.Recording.StopWait),
		},
		Assistant: domain.AssistantSettings{
			SystemPrompt: s.configStore.GetString(keyAssistantPrompt),
			RAGEnabled:   s.getBool(keyAssistantRAG, d.Assistant.RAGEnabled),
			TopK:         s.getInt(keyAssistantTopK, d.Assistant.TopK),
		},
		Loader: domain.LoaderSettings{
			FetchTimeout:      s.getDuration(keyLoaderFetchTimeout, d.Loader.FetchTimeout),
			BodyWait:          s.getDuration(keyLoaderBodyWait, d.Loader.BodyWait),
			SettleDelay:       s.getDuration(keyLoaderSettleDelay, d.Loader.SettleDelay),
			UserAgent:         s.getString(keyLoaderUserAgent, d.Loader.UserAgent),
			RequestsPerSecond: s.getFloat(keyLoaderRPS, d.Loader.RequestsPerSecond),
		},
	}
}

// applyEnv overlays environment variables for the selected providers.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	override := func(dst *string, name string) {
		if v := s.getenv(name); v != "" {
			*dst = v
		}
	}

	switch settings.LLM.Provider {
	case domain.AIProviderAzure:
		override(&settings.LLM.APIKey, EnvAzureOpenAIKey)
		override(&settings.LLM.BaseURL, EnvAzureOpenAIEndpoint)
		override(&settings.LLM.Model, EnvAzureOpenAIDeploy)
		override(&settings.LLM.APIVersion, EnvAzureOpenAIVersion)
	case domain.AIProviderOpenAI:
		override(&settings.LLM.APIKey, EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		override(&settings.LLM.APIKey, EnvAnthropicKey)
	case domain.AIProviderOllama:
		override(&settings.LLM.BaseURL, EnvOllamaHost)
	}

	switch settings.Speech.Provider {
	case domain.SpeechProviderAzure:
		override(&settings.Speech.Key, EnvAzureSpeechKey)
		override(&settings.Speech.Region, EnvAzureSpeechRegion)
	case domain.SpeechProviderOpenAI:
		override(&settings.Speech.Key, EnvOpenAIKey)
	}
	override(&settings.Speech.Language, EnvSpeechLanguage)
	override(&settings.Speech.Voice, EnvTTSVoice)
}

// Save persists application settings.
//
//nolint:gocyclo // One guarded write per key.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	stringKeys := []struct {
		key, value, name string
		skipEmpty        bool
	}{
		{keyLLMProvider, settings.LLM.Provider.String(), "llm provider", false},
		{keyLLMModel, settings.LLM.Model, "llm model", false},
		{keyLLMBaseURL, settings.LLM.BaseURL, "llm base_url", false},
		{keyLLMAPIKey, settings.LLM.APIKey, "llm api_key", true},
		{keyLLMAPIVersion, settings.LLM.APIVersion, "llm api_version", false},
		{keySpeechProvider, settings.Speech.Provider.String(), "speech provider", false},
		{keySpeechKey, settings.Speech.Key, "speech key", true},
		{keySpeechRegion, settings.Speech.Region, "speech region", false},
		{keySpeechLanguage, settings.Speech.Language, "speech language", false},
		{keySpeechVoice, settings.Speech.Voice, "speech voice", false},
		{keyAssistantPrompt, settings.Assistant.SystemPrompt, "system prompt", false},
		{keyLoaderUserAgent, settings.Loader.UserAgent, "loader user_agent", false},
	}
	for _, kv := range stringKeys {
		if kv.skipEmpty && kv.value == "" {
			continue
		}
		if err := s.configStore.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("save %s: %w", kv.name, err)
		}
	}

	durations := []struct {
		key   string
		value time.Duration
		name  string
	}{
		{keySpeechSegmentation, settings.Speech.SegmentationSilence, "speech segmentation_silence"},
		{keySpeechInitial, settings.Speech.InitialSilence, "speech initial_silence"},
		{keyRecordingMax, settings.Recording.MaxDuration, "recording max_duration"},
		{keyRecordingPoll, settings.Recording.PollInterval, "recording poll_interval"},
		{keyRecordingStopWait, settings.Recording.StopWait, "recording stop_wait"},
		{keyLoaderFetchTimeout, settings.Loader.FetchTimeout, "loader fetch_timeout"},
		{keyLoaderBodyWait, settings.Loader.BodyWait, "loader body_wait"},
		{keyLoaderSettleDelay, settings.Loader.SettleDelay, "loader settle_delay"},
	}
	for _, kv := range durations {
		if err := s.configStore.Set(kv.key, kv.value.String()); err != nil {
			return fmt.Errorf("save %s: %w", kv.name, err)
		}
	}

	if err := s.configStore.Set(keyLLMTemperature, settings.LLM.Temperature); err != nil {
		return fmt.Errorf("save llm temperature: %w", err)
	}
	if err := s.configStore.Set(keyLLMMaxTokens, settings.LLM.MaxTokens); err != nil {
		return fmt.Errorf("save llm max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyAssistantRAG, settings.Assistant.RAGEnabled); err != nil {
		return fmt.Errorf("save rag_enabled: %w", err)
	}
	if err := s.configStore.Set(keyAssistantTopK, settings.Assistant.TopK); err != nil {
		return fmt.Errorf("save top_k: %w", err)
	}
	if err := s.configStore.Set(keyLoaderRPS, settings.Loader.RequestsPerSecond); err != nil {
		return fmt.Errorf("save loader requests_per_second: %w", err)
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey, baseURL string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Keys may come from the environment instead of the config file.
	if provider.RequiresAPIKey() && apiKey == "" && s.llmKeyFromEnv(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	switch {
	case baseURL != "":
		settings.LLM.BaseURL = baseURL
	case provider.IsLocal():
		settings.LLM.BaseURL = defaultOllamaBaseURL
	default:
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey
	if apiKey == "" {
		// Save skips empty keys; clear a stale one explicitly.
		if err := s.configStore.Set(keyLLMAPIKey, ""); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return s.Save(settings)
}

// SetSpeechProvider configures the speech provider.
func (s *SettingsService) SetSpeechProvider(provider domain.SpeechProvider, key, region string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid speech provider: %s", provider)
	}
	if provider == domain.SpeechProviderAzure && region == "" && s.getenv(EnvAzureSpeechRegion) == "" {
		return fmt.Errorf("region required for %s", provider)
	}

	settings := s.stored()
	settings.Speech.Provider = provider
	settings.Speech.Key = key
	settings.Speech.Region = region
	if provider != domain.SpeechProviderAzure {
		settings.Speech.Region = ""
	}
	if key == "" {
		if err := s.configStore.Set(keySpeechKey, ""); err != nil {
			return fmt.Errorf("save speech key: %w", err)
		}
	}

	return s.Save(settings)
}

// SetSystemPrompt stores a custom system prompt. Empty restores the default.
func (s *SettingsService) SetSystemPrompt(prompt string) error {
	if err := s.configStore.Set(keyAssistantPrompt, prompt); err != nil {
		return fmt.Errorf("save system prompt: %w", err)
	}
	return nil
}

// SetRAGEnabled stores the default RAG flag for new conversations.
func (s *SettingsService) SetRAGEnabled(enabled bool) error {
	if err := s.configStore.Set(keyAssistantRAG, enabled); err != nil {
		return fmt.Errorf("save rag_enabled: %w", err)
	}
	return nil
}

// Validate reports the configuration required by the selected providers
// that is missing.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the chunking pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		loaded := s.loadProcessorConfig("pipeline." + name + ".")
		if len(loaded) == 0 {
			continue
		}
		if cfg.ProcessorConfigs == nil {
			cfg.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any, len(loaded))
		}
		for k, v := range loaded {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads known processor keys under prefix.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any, processorConfigKeyCount)
	for _, key := range []string{"separator", "window_size", "overlap"} {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}
	return cfg
}

// LLMConfig returns the client configuration for the current LLM settings.
func (s *SettingsService) LLMConfig() driven.LLMConfig {
	settings, _ := s.Get()
	return driven.LLMConfig{
		Provider:   settings.LLM.Provider.String(),
		Model:      settings.LLM.Model,
		BaseURL:    settings.LLM.BaseURL,
		APIKey:     settings.LLM.APIKey,
		APIVersion: settings.LLM.APIVersion,
	}
}

func (s *SettingsService) llmKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderAzure:
		return s.getenv(EnvAzureOpenAIKey)
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(keyLLMProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getSpeechProvider(defaultVal domain.SpeechProvider) domain.SpeechProvider {
	val := s.configStore.GetString(keySpeechProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.SpeechProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
