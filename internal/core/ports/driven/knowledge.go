package driven

import (
	"context"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// KnowledgeStore holds the active chunk set that ranking reads.
// Replace is atomic from a reader's point of view: readers observe either
// the old set or the new one, never a mix.
type KnowledgeStore interface {
	// Replace installs chunks as the entire active set.
	Replace(chunks []domain.Chunk)

	// Chunks returns the active set in ingestion order. The caller must not
	// modify the returned slice.
	Chunks() []domain.Chunk

	// Clear empties the active set.
	Clear()

	// Count returns the number of chunks held.
	Count() int
}

// KnowledgeSnapshotStore persists the knowledge base between processes.
// It is optional; without it the knowledge base lives in memory only.
type KnowledgeSnapshotStore interface {
	// SaveSnapshot replaces any stored snapshot in a single transaction.
	SaveSnapshot(ctx context.Context, snapshot domain.KnowledgeSnapshot) error

	// LoadSnapshot returns the stored snapshot.
	// Returns domain.ErrNotFound when nothing has been saved.
	LoadSnapshot(ctx context.Context) (*domain.KnowledgeSnapshot, error)

	// ClearSnapshot removes the stored snapshot.
	ClearSnapshot(ctx context.Context) error

	// Close releases resources.
	Close() error
}
