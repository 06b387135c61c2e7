package driven

import "github.com/custodia-labs/voxdesk/internal/core/domain"

// AIConfigValidator validates provider configurations by testing
// connectivity to the underlying services.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid.
	ValidateLLM(config *domain.LLMSettings) error
}
