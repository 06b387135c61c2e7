package services

import (
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// loadPrompt loads a prompt from the store, falling back to the built-in
// template if the store is unset or the load fails.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		prompt, err := store.Load(name)
		if err == nil && prompt != "" {
			return prompt
		}
		if err != nil {
			logger.Debug("Prompt %q unavailable, using default: %v", name, err)
		}
	}
	prompt, _ := driven.DefaultPrompt(name)
	return prompt
}
