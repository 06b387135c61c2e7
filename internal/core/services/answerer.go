package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Fixed answers for the empty states of the knowledge base.
const (
	AnswerNotInitialized = "RAG system not initialized. Please upload documents first."
	AnswerNoRelevant     = "No relevant information found in the knowledge base."
)

// DefaultTopK is the number of chunks placed in the retrieval context.
const DefaultTopK = 3

// Ensure RetrievalAnswerer can use custom prompts.
var _ driven.PromptStoreAware = (*RetrievalAnswerer)(nil)

// RetrievalAnswerer answers questions from the knowledge base.
//
// The LLM client is bound when the knowledge base is built and unbound when
// it is cleared; without a bound client the answerer reports that the
// knowledge base is not initialised.
type RetrievalAnswerer struct {
	store   driven.KnowledgeStore
	ranker  *Ranker
	prompts driven.PromptStore
	topK    int
	opts    driven.GenerateOptions

	mu  sync.RWMutex
	llm driven.LLMService
}

// AnswererOption configures a RetrievalAnswerer.
type AnswererOption func(*RetrievalAnswerer)

// WithTopK sets how many chunks are placed in the prompt context.
func WithTopK(k int) AnswererOption {
	return func(a *RetrievalAnswerer) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithGenerateOptions sets the sampling options for the answer call.
func WithGenerateOptions(opts driven.GenerateOptions) AnswererOption {
	return func(a *RetrievalAnswerer) {
		a.opts = opts
	}
}

// NewRetrievalAnswerer creates an answerer over store.
func NewRetrievalAnswerer(store driven.KnowledgeStore, opts ...AnswererOption) *RetrievalAnswerer {
	a := &RetrievalAnswerer{
		store:  store,
		ranker: NewRanker(store),
		topK:   DefaultTopK,
		opts: driven.GenerateOptions{
			Temperature: 0.7,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (a *RetrievalAnswerer) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// Bind installs llm and returns the previously bound client, if any, so the
// caller can close it.
func (a *RetrievalAnswerer) Bind(llm driven.LLMService) driven.LLMService {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.llm
	a.llm = llm
	return prev
}

// Unbind removes the bound client and returns it.
func (a *RetrievalAnswerer) Unbind() driven.LLMService {
	return a.Bind(nil)
}

// Bound reports whether an LLM client is bound.
func (a *RetrievalAnswerer) Bound() bool {
	return a.client() != nil
}

// Ranker returns the ranker reading the same store.
func (a *RetrievalAnswerer) Ranker() *Ranker {
	return a.ranker
}

// Answer ranks the knowledge base against question and asks the LLM to
// answer from the best chunks. It never fails: an LLM error is described
// in the answer text and no sources are returned.
func (a *RetrievalAnswerer) Answer(ctx context.Context, question string) domain.Answer {
	llm := a.client()
	if llm == nil || a.store == nil || a.store.Count() == 0 {
		logger.Debug("Retrieval skipped: knowledge base not initialised")
		return domain.Answer{Text: AnswerNotInitialized}
	}

	ranked := a.ranker.Rank(question, a.topK)
	if len(ranked) == 0 {
		logger.Debug("Retrieval found no chunk sharing a word with %q", question)
		return domain.Answer{Text: AnswerNoRelevant}
	}

	sources := make([]domain.Chunk, len(ranked))
	parts := make([]string, len(ranked))
	for i, r := range ranked {
		sources[i] = r.Chunk
		parts[i] = r.Chunk.Content
		logger.Debug("Context chunk %d: score=%d source=%s", i, r.Score, r.Chunk.Source())
	}

	template := loadPrompt(a.prompts, driven.PromptRAGAnswer)
	prompt := fmt.Sprintf(template, strings.Join(parts, "\n\n"), question)

	start := time.Now()
	text, err := llm.Generate(ctx, prompt, a.opts)
	logger.Timed("retrieval answer", start)
	if err != nil {
		logger.Warn("Retrieval answer failed: %v", err)
		return domain.Answer{Text: fmt.Sprintf("Error querying RAG system: %v", err)}
	}

	return domain.Answer{Text: text, Sources: sources}
}

func (a *RetrievalAnswerer) client() driven.LLMService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.llm
}
