package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.KnowledgeSnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps a knowledge snapshot in memory.
type SnapshotStore struct {
	mu       sync.RWMutex
	snapshot *domain.KnowledgeSnapshot
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// SaveSnapshot replaces any stored snapshot.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snapshot domain.KnowledgeSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chunks := make([]domain.Chunk, len(snapshot.Chunks))
	for i, c := range snapshot.Chunks {
		c.Metadata = domain.CopyMetadata(c.Metadata)
		chunks[i] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &domain.KnowledgeSnapshot{Chunks: chunks, BuiltAt: snapshot.BuiltAt}
	return nil
}

// LoadSnapshot returns the stored snapshot or domain.ErrNotFound.
func (s *SnapshotStore) LoadSnapshot(_ context.Context) (*domain.KnowledgeSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	out := *s.snapshot
	return &out, nil
}

// ClearSnapshot removes the stored snapshot.
func (s *SnapshotStore) ClearSnapshot(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	return nil
}

// Close releases resources.
func (s *SnapshotStore) Close() error {
	return nil
}
