package tui

import "errors"

// ErrMissingVoiceService is returned when the voice service is not provided.
var ErrMissingVoiceService = errors.New("tui: voice service is required")

// ErrMissingConversationService is returned when the conversation service is not provided.
var ErrMissingConversationService = errors.New("tui: conversation service is required")
