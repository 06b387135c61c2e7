package chunker

import (
	"context"
	"testing"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default separator", func(t *testing.T) {
		p := New()
		if p.separator != DefaultSeparator {
			t.Errorf("expected separator %q, got %q", DefaultSeparator, p.separator)
		}
	})

	t.Run("custom separator", func(t *testing.T) {
		p := New(WithSeparator("\n---\n"))
		if p.separator != "\n---\n" {
			t.Errorf("expected custom separator, got %q", p.separator)
		}
	})

	t.Run("empty separator ignored", func(t *testing.T) {
		p := New(WithSeparator(""))
		if p.separator != DefaultSeparator {
			t.Errorf("expected default separator, got %q", p.separator)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", New().Name())
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{ID: "d"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestProcessor_Process_TwoParagraphs(t *testing.T) {
	doc := &domain.Document{
		ID:       "doc-1",
		Content:  "Alpha beta.\n\ngamma delta",
		Metadata: map[string]any{domain.MetaSource: "notes.txt"},
	}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	want := []string{"Alpha beta.", "gamma delta"}
	for i, c := range chunks {
		if c.Content != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], c.Content)
		}
		if c.Metadata[domain.MetaChunk] != i {
			t.Errorf("chunk %d: expected chunk index %d, got %v", i, i, c.Metadata[domain.MetaChunk])
		}
		if c.Metadata[domain.MetaSource] != "notes.txt" {
			t.Errorf("chunk %d: parent metadata not copied", i)
		}
		if c.DocumentID != "doc-1" {
			t.Errorf("chunk %d: expected document id doc-1, got %s", i, c.DocumentID)
		}
		if c.ID == "" {
			t.Errorf("chunk %d: missing id", i)
		}
	}

	if chunks[0].ID == chunks[1].ID {
		t.Error("chunk ids should be unique")
	}
}

func TestProcessor_Process_DropsBlankParagraphs(t *testing.T) {
	doc := &domain.Document{Content: "  first  \n\n \n\n\n\nsecond\n\n"}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "first" || chunks[1].Content != "second" {
		t.Errorf("unexpected contents: %q, %q", chunks[0].Content, chunks[1].Content)
	}
	// blank paragraphs still consume an ordinal
	if chunks[1].Metadata[domain.MetaChunk] != 3 {
		t.Errorf("expected ordinal 3 for second chunk, got %v", chunks[1].Metadata[domain.MetaChunk])
	}
	for _, c := range chunks {
		if c.Content == "" {
			t.Error("chunk content must never be empty")
		}
	}
}

func TestProcessor_Process_WhitespaceOnly(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{Content: "\n\n  \n\n"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestProcessor_Process_CRLF(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{Content: "one\r\n\r\ntwo"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestProcessor_Process_Idempotent(t *testing.T) {
	p := New()
	first, err := p.Process(context.Background(), &domain.Document{Content: "A single paragraph\nwith a line break."}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(first))
	}

	again, err := p.Process(context.Background(), &domain.Document{Content: first[0].Content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 1 || again[0].Content != first[0].Content {
		t.Errorf("re-chunking a single paragraph should yield it unchanged, got %v", again)
	}
}

func TestProcessor_Process_DoesNotShareMetadata(t *testing.T) {
	doc := &domain.Document{Content: "a\n\nb", Metadata: map[string]any{"k": "v"}}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks[0].Metadata["k"] = "changed"
	if chunks[1].Metadata["k"] != "v" || doc.Metadata["k"] != "v" {
		t.Error("chunk metadata must be independent copies")
	}
	if _, ok := doc.Metadata[domain.MetaChunk]; ok {
		t.Error("document metadata must not be modified")
	}
}
