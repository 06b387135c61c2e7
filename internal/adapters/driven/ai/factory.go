// Package ai provides factory functions for creating LLM service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/voxdesk/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/voxdesk/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/voxdesk/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Ensure Factory implements the interface.
var _ driven.LLMFactory = (*Factory)(nil)

// Factory creates LLM clients for the knowledge service. Each call returns
// a new client; the caller owns it and must Close it.
type Factory struct{}

// NewFactory creates an LLM factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM builds a client for cfg. An unconfigured provider is an error
// wrapping domain.ErrLLMUnavailable so a knowledge build fails cleanly.
func (f *Factory) CreateLLM(cfg driven.LLMConfig) (driven.LLMService, error) {
	settings := SettingsFromConfig(cfg)
	svc, err := CreateLLMService(&settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: %s is not configured", domain.ErrLLMUnavailable, describe(cfg.Provider))
	}
	return svc, nil
}

// SettingsFromConfig converts the port-level config to domain settings.
func SettingsFromConfig(cfg driven.LLMConfig) domain.LLMSettings {
	return domain.LLMSettings{
		Provider:   domain.AIProvider(cfg.Provider),
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		APIVersion: cfg.APIVersion,
	}
}

func describe(provider string) string {
	if provider == "" {
		return "LLM provider"
	}
	return fmt.Sprintf("LLM provider %q", provider)
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil, nil when no provider is configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'voxdesk settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'voxdesk settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// Unconfigured settings are not an error; there is nothing to check.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the LLM service matching settings.
// Returns nil, nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI, domain.AIProviderAzure:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Azure:      settings.Provider == domain.AIProviderAzure,
			APIVersion: settings.APIVersion,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
