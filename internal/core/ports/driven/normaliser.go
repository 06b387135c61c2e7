package driven

import (
	"context"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// Normaliser transforms raw file or page bytes into documents.
// Each normaliser handles specific MIME types and file extensions.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns the lower-case file extensions (with dot)
	// this normaliser handles.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise transforms a raw document into one or more documents.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Documents are the normalised documents with Content populated.
	// Paginated formats produce one document per non-empty page.
	Documents []domain.Document
}

// NormaliserRegistry selects the appropriate normaliser for a document.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when nothing matches.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Supports reports whether a normaliser exists for the extension.
	Supports(ext string) bool
}
