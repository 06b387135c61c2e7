package driving

import (
	"context"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// KnowledgeService builds and inspects the knowledge base.
type KnowledgeService interface {
	// Build loads sources, chunks them and replaces the knowledge base.
	// A failed build leaves the previous knowledge base installed and
	// reports why in the result; the error return is reserved for
	// cancellation.
	Build(ctx context.Context, sources []string, mode domain.RenderMode) (*domain.BuildResult, error)

	// Stats returns count and readiness.
	Stats() domain.KnowledgeStats

	// Clear empties the knowledge base, including any persisted snapshot.
	Clear(ctx context.Context) error

	// Search ranks chunks against query and returns at most k.
	Search(query string, k int) []domain.RankedResult

	// Answer runs a retrieval-augmented query. It never fails; problems are
	// described in the answer text.
	Answer(ctx context.Context, question string) domain.Answer

	// Restore loads a persisted snapshot if one exists.
	Restore(ctx context.Context) error
}
