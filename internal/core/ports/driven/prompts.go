package driven

// PromptStore provides access to LLM prompt templates.
// Templates are embedded in the binary and may be overridden by files on disk.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptSystem is the default assistant system prompt.
	// This prompt has no format placeholders.
	PromptSystem = "system"

	// PromptRAGAnswer asks the model to answer from retrieved context.
	// The template expects %s (context) then %s (question).
	PromptRAGAnswer = "rag_answer"

	// PromptRAGAugment splices a retrieval answer into the system prompt.
	// The template expects %s (system prompt) then %s (retrieval answer).
	PromptRAGAugment = "rag_augment"

	// PromptRAGFailed is appended when retrieval failed for a turn.
	// The template expects %s (system prompt).
	PromptRAGFailed = "rag_failed"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses built-in defaults.
	SetPromptStore(store PromptStore)
}

// defaultPrompts are the built-in templates. Prompt stores seed their files
// from these and services fall back to them when no store is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	PromptSystem: `You are a helpful AI call agent. You assist customers with their inquiries in a professional and friendly manner.
Keep your responses concise and clear, suitable for spoken conversation.`,

	PromptRAGAnswer: `Based on the following information from the knowledge base, answer the question.

Knowledge Base Information:
%s

Question: %s

Please provide a helpful and accurate answer based on the information above. If the information doesn't directly answer the question, say so and provide what information is available.`,

	PromptRAGAugment: `%s

Based on the knowledge base, here's relevant information:
%s

Use this information to provide a helpful and accurate response. If the information doesn't directly answer the question, use your general knowledge to provide a helpful response.`,

	PromptRAGFailed: "%s\n\nNote: Knowledge base search failed, using general knowledge.",
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// DefaultPromptNames returns the names of all built-in templates.
func DefaultPromptNames() []string {
	return []string{PromptSystem, PromptRAGAnswer, PromptRAGAugment, PromptRAGFailed}
}
