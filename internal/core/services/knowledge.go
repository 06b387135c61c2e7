package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// Build outcome messages.
const (
	msgNoDocuments = "No documents loaded"
	msgNoContent   = "No content to index"
)

// KnowledgeService builds the knowledge base and answers from it.
//
// A build either installs a complete new chunk set together with a freshly
// constructed LLM client, or leaves the previous knowledge base untouched.
// Builds are serialised; reads may run concurrently with a build.
type KnowledgeService struct {
	loader    *DocumentLoader
	pipeline  driven.PostProcessorPipeline
	store     driven.KnowledgeStore
	answerer  *RetrievalAnswerer
	factory   driven.LLMFactory
	llmConfig driven.LLMConfig
	snapshots driven.KnowledgeSnapshotStore
	now       func() time.Time

	buildMu sync.Mutex

	mu      sync.RWMutex
	builtAt time.Time
}

// NewKnowledgeService creates a knowledge service. The factory is called on
// every build with llmConfig.
func NewKnowledgeService(
	loader *DocumentLoader,
	pipeline driven.PostProcessorPipeline,
	store driven.KnowledgeStore,
	answerer *RetrievalAnswerer,
	factory driven.LLMFactory,
	llmConfig driven.LLMConfig,
) *KnowledgeService {
	return &KnowledgeService{
		loader:    loader,
		pipeline:  pipeline,
		store:     store,
		answerer:  answerer,
		factory:   factory,
		llmConfig: llmConfig,
		now:       time.Now,
	}
}

// SetSnapshotStore enables persistence of the knowledge base between runs.
func (s *KnowledgeService) SetSnapshotStore(store driven.KnowledgeSnapshotStore) {
	s.snapshots = store
}

// Build loads sources, chunks them and replaces the knowledge base.
//
//nolint:gocyclo // Sequential build steps, each with its own failure message.
func (s *KnowledgeService) Build(
	ctx context.Context, sources []string, mode domain.RenderMode,
) (*domain.BuildResult, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	logger.Section("Knowledge Build")
	start := time.Now()

	loaded, err := s.loader.Load(ctx, sources, mode)
	if err != nil {
		return nil, err
	}

	result := &domain.BuildResult{
		DocumentCount: len(loaded.Documents),
		Notices:       loaded.Notices,
	}
	if len(loaded.Documents) == 0 {
		result.Message = msgNoDocuments
		logger.Info("Build aborted: %s", msgNoDocuments)
		return result, nil
	}

	var chunks []domain.Chunk
	for i := range loaded.Documents {
		doc := &loaded.Documents[i]
		docChunks, err := s.pipeline.Process(ctx, doc)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return s.failed(result, fmt.Errorf("chunk %s: %w", doc.URI, err)), nil
		}
		chunks = append(chunks, docChunks...)
	}
	result.Notices = append(result.Notices, domain.Notice{
		Level:   domain.NoticeInfo,
		Message: fmt.Sprintf("Split documents into %d chunks", len(chunks)),
	})
	logger.Debug("Split %d documents into %d chunks", len(loaded.Documents), len(chunks))

	if len(chunks) == 0 {
		result.Message = msgNoContent
		logger.Info("Build aborted: %s", msgNoContent)
		return result, nil
	}

	llm, err := s.createLLM()
	if err != nil {
		return s.failed(result, err), nil
	}

	builtAt := s.now()
	if s.snapshots != nil {
		snapshot := domain.KnowledgeSnapshot{Chunks: chunks, BuiltAt: builtAt}
		if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
			closeLLM(llm)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return s.failed(result, fmt.Errorf("save snapshot: %w", err)), nil
		}
	}

	s.install(chunks, llm, builtAt)

	result.Success = true
	result.ChunkCount = len(chunks)
	result.Message = fmt.Sprintf("Knowledge base created with %d document chunks", len(chunks))
	logger.Info("%s", result.Message)
	logger.Timed("knowledge build", start)
	return result, nil
}

// Stats returns count and readiness.
func (s *KnowledgeService) Stats() domain.KnowledgeStats {
	chunks := s.store.Chunks()
	stats := domain.KnowledgeStats{
		Count:  len(chunks),
		Status: domain.KnowledgeStatusNotInitialized,
	}
	if stats.Count == 0 {
		return stats
	}

	s.mu.RLock()
	stats.BuiltAt = s.builtAt
	s.mu.RUnlock()

	stats.Status = domain.KnowledgeStatusReady
	stats.Sources = domain.DistinctSources(chunks)
	return stats
}

// Clear empties the knowledge base, unbinds the LLM client and removes any
// persisted snapshot.
func (s *KnowledgeService) Clear(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.store.Clear()
	closeLLM(s.answerer.Unbind())

	s.mu.Lock()
	s.builtAt = time.Time{}
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.ClearSnapshot(ctx); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}
	logger.Info("Knowledge base cleared")
	return nil
}

// Search ranks chunks against query and returns at most k.
func (s *KnowledgeService) Search(query string, k int) []domain.RankedResult {
	return s.answerer.Ranker().Rank(query, k)
}

// Answer runs a retrieval-augmented query.
func (s *KnowledgeService) Answer(ctx context.Context, question string) domain.Answer {
	return s.answerer.Answer(ctx, question)
}

// Restore installs the persisted snapshot, if any.
//
// The chunks are installed even when the LLM client cannot be built, so
// search and stats keep working; the error is still returned so callers can
// report that answers are unavailable.
func (s *KnowledgeService) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	snapshot, err := s.snapshots.LoadSnapshot(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("No knowledge snapshot to restore")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(snapshot.Chunks) == 0 {
		return nil
	}

	llm, llmErr := s.createLLM()
	s.install(snapshot.Chunks, llm, snapshot.BuiltAt)
	logger.Debug("Restored %d chunks built at %s", len(snapshot.Chunks), snapshot.BuiltAt.Format(time.RFC3339))

	if llmErr != nil {
		return fmt.Errorf("restore: %w", llmErr)
	}
	return nil
}

func (s *KnowledgeService) install(chunks []domain.Chunk, llm driven.LLMService, builtAt time.Time) {
	s.store.Replace(chunks)
	closeLLM(s.answerer.Bind(llm))

	s.mu.Lock()
	s.builtAt = builtAt
	s.mu.Unlock()
}

func (s *KnowledgeService) createLLM() (driven.LLMService, error) {
	if s.factory == nil {
		return nil, fmt.Errorf("%w: no LLM factory configured", domain.ErrLLMUnavailable)
	}
	llm, err := s.factory.CreateLLM(s.llmConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: provider %q not configured", domain.ErrLLMUnavailable, s.llmConfig.Provider)
	}
	return llm, nil
}

func (s *KnowledgeService) failed(result *domain.BuildResult, err error) *domain.BuildResult {
	logger.Warn("Build failed: %v", err)
	result.Success = false
	result.ChunkCount = 0
	result.Message = fmt.Sprintf("Error setting up knowledge base: %v", err)
	result.Notices = append(result.Notices, domain.Notice{
		Level:   domain.NoticeError,
		Message: err.Error(),
	})
	return result
}

func closeLLM(llm driven.LLMService) {
	if llm == nil {
		return
	}
	if err := llm.Close(); err != nil {
		logger.Debug("Closing LLM client: %v", err)
	}
}
