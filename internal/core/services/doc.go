// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The knowledge path runs DocumentLoader, the post-processor pipeline,
// the KnowledgeStore and RetrievalAnswerer. ConversationManager and
// VoiceAssistant sit on top of it, and SpeechSession drives live
// transcription for voice input.
//
// Services are pure Go with no CGO or external dependencies.
package services
