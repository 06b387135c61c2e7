package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a source with no matching normaliser.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Conversation and retrieval answers are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrMissingConfig indicates a required configuration value is absent.
	ErrMissingConfig = errors.New("missing configuration")

	// Knowledge Errors.

	// ErrNoDocuments indicates a build was requested but nothing loaded.
	ErrNoDocuments = errors.New("no documents loaded")

	// ErrKnowledgeBaseEmpty indicates a query against an empty knowledge base.
	ErrKnowledgeBaseEmpty = errors.New("knowledge base empty")

	// Fetch Errors.

	// ErrFetchFailed indicates a URL could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrHeadlessUnavailable indicates no headless browser could be started.
	ErrHeadlessUnavailable = errors.New("headless browser unavailable")

	// Speech Errors.

	// ErrSpeechUnavailable indicates no speech provider is configured or built in.
	ErrSpeechUnavailable = errors.New("speech service unavailable")

	// ErrAlreadyRecording indicates start was called while a session is active.
	ErrAlreadyRecording = errors.New("already recording")

	// ErrRecognitionCanceled indicates the recogniser cancelled the session with an error.
	ErrRecognitionCanceled = errors.New("recognition canceled")
)
