// Package plaintext reads text files as a single document.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents. The whole file becomes one
// document.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
	}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text", ".csv", ".log"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw text file to a document.
// Invalid UTF-8 sequences are replaced rather than rejected.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := string(raw.Content)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "\uFFFD")
	}
	content = strings.TrimPrefix(content, "\uFEFF")

	doc := domain.Document{
		ID:        uuid.New().String(),
		URI:       raw.URI,
		Title:     titleFromMetadataOrURI(raw),
		Content:   content,
		Metadata:  domain.CopyMetadata(raw.Metadata),
		CreatedAt: time.Now(),
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata[domain.MetaFormat] = "plaintext"

	return &driven.NormaliseResult{
		Documents: []domain.Document{doc},
	}, nil
}

// titleFromMetadataOrURI checks metadata for a title first, then falls back to the URI.
func titleFromMetadataOrURI(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata[domain.MetaTitle].(string); ok && title != "" {
			return title
		}
	}
	return TitleFromPath(raw.URI)
}

// TitleFromPath derives a human-readable title from a file path: the base
// name without extension, underscores and dashes replaced with spaces.
func TitleFromPath(uri string) string {
	filename := filepath.Base(uri)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
