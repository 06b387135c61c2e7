// Package chunker provides the chunking processors: paragraph splitting,
// which defines the retrieval units, and an optional fixed-size window
// splitter for paragraphs that are too long to rank usefully.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// DefaultSeparator is the paragraph break.
const DefaultSeparator = "\n\n"

// Processor splits document content on blank lines, one chunk per
// non-empty paragraph. It implements the PostProcessor interface.
type Processor struct {
	separator string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithSeparator sets the paragraph separator.
func WithSeparator(sep string) Option {
	return func(p *Processor) {
		if sep != "" {
			p.separator = sep
		}
	}
}

// New creates a new paragraph chunker with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{separator: DefaultSeparator}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into paragraph chunks.
// Input chunks are ignored; this processor creates new chunks from document
// content. Each chunk carries a copy of the document metadata plus its
// paragraph ordinal under "chunk". Blank paragraphs are dropped but still
// consume an ordinal.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	content := strings.ReplaceAll(doc.Content, "\r\n", "\n")
	paragraphs := strings.Split(content, p.separator)
	chunks := make([]domain.Chunk, 0, len(paragraphs))

	for i, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		meta := domain.CopyMetadata(doc.Metadata)
		if meta == nil {
			meta = make(map[string]any, 1)
		}
		meta[domain.MetaChunk] = i

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    para,
			Position:   i,
			Metadata:   meta,
		})
	}

	return chunks, nil
}
