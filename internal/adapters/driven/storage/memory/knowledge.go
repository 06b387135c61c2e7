package memory

import (
	"sync"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore holds the active chunk set in memory.
// Replace swaps the whole slice under the lock, so readers never observe a
// partially installed set.
type KnowledgeStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
}

// NewKnowledgeStore creates an empty knowledge store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{}
}

// Replace installs chunks as the entire active set.
func (s *KnowledgeStore) Replace(chunks []domain.Chunk) {
	installed := make([]domain.Chunk, len(chunks))
	copy(installed, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = installed
}

// Chunks returns the active set in ingestion order.
func (s *KnowledgeStore) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks
}

// Clear empties the active set.
func (s *KnowledgeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
}

// Count returns the number of chunks held.
func (s *KnowledgeStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
