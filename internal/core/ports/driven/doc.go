// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser: Transforms raw file or page bytes into documents
//   - NormaliserRegistry: Selects the normaliser for a source
//   - PostProcessorPipeline: Cuts documents into chunks
//   - KnowledgeStore: The active chunk set
//   - WebFetcher: Plain HTTP page retrieval
//   - ConfigStore: Application configuration
//   - LLMFactory: Builds the LLM client bound on each knowledge build
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - HeadlessFetcher: JavaScript rendering. Without it, URLs use WebFetcher.
//   - KnowledgeSnapshotStore: Persistence. Without it, knowledge lives in memory.
//   - SpeechTranscriber: Voice input. Without it, recording is disabled.
//   - SpeechSynthesizer: Voice output. Without it, replies are text only.
//   - PromptStore: Custom prompts. Without it, built-in templates are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
