package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// DefaultWindowSize is the default number of characters per window.
const DefaultWindowSize = 1000

// DefaultWindowOverlap is the default number of overlapping characters.
const DefaultWindowOverlap = 200

// MetaWindow is the window ordinal within a split paragraph.
const MetaWindow = "window"

// Window splits chunks longer than its size into overlapping fixed-size
// windows. Shorter chunks pass through untouched. Sizes count runes so
// multi-byte text is never cut mid-character.
type Window struct {
	size    int
	overlap int
}

// WindowOption configures the window processor.
type WindowOption func(*Window)

// WithWindowSize sets the window size in characters.
func WithWindowSize(size int) WindowOption {
	return func(w *Window) {
		if size > 0 {
			w.size = size
		}
	}
}

// WithWindowOverlap sets the overlap between windows in characters.
func WithWindowOverlap(overlap int) WindowOption {
	return func(w *Window) {
		if overlap >= 0 {
			w.overlap = overlap
		}
	}
}

// NewWindow creates a window processor with the given options.
func NewWindow(opts ...WindowOption) *Window {
	w := &Window{
		size:    DefaultWindowSize,
		overlap: DefaultWindowOverlap,
	}
	for _, opt := range opts {
		opt(w)
	}

	// Ensure overlap doesn't exceed window size
	if w.overlap >= w.size {
		w.overlap = w.size / 4
	}

	return w
}

// Name returns the processor name.
func (w *Window) Name() string {
	return "window"
}

// Process splits oversized chunks. When it runs first in a pipeline it
// treats the whole document as a single chunk.
func (w *Window) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if chunks == nil {
		if doc.Content == "" {
			return nil, nil
		}
		chunks = []domain.Chunk{{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    doc.Content,
			Metadata:   domain.CopyMetadata(doc.Metadata),
		}}
	}

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		runes := []rune(c.Content)
		if len(runes) <= w.size {
			out = append(out, c)
			continue
		}

		step := w.size - w.overlap
		for n, start := 0, 0; start < len(runes); n, start = n+1, start+step {
			end := start + w.size
			if end > len(runes) {
				end = len(runes)
			}

			meta := domain.CopyMetadata(c.Metadata)
			if meta == nil {
				meta = make(map[string]any, 1)
			}
			meta[MetaWindow] = n

			out = append(out, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: c.DocumentID,
				Content:    string(runes[start:end]),
				Position:   c.Position,
				Metadata:   meta,
			})

			if end == len(runes) {
				break
			}
		}
	}

	return out, nil
}
