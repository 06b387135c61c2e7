package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		ID:        "doc-123",
		URI:       "/docs/faq.pdf",
		Title:     "FAQ",
		Content:   "Refunds take five days.",
		Metadata:  map[string]any{MetaSource: "/docs/faq.pdf", MetaPage: 2},
		CreatedAt: now,
	}

	assert.Equal(t, "doc-123", doc.ID)
	assert.Equal(t, "/docs/faq.pdf", doc.URI)
	assert.Equal(t, "FAQ", doc.Title)
	assert.Equal(t, 2, doc.Metadata[MetaPage])
	assert.Equal(t, now, doc.CreatedAt)
}

func TestChunk_Source(t *testing.T) {
	assert.Equal(t, "", Chunk{}.Source())
	assert.Equal(t, "", Chunk{Metadata: map[string]any{MetaSource: 42}}.Source())
	assert.Equal(t, "https://example.com", Chunk{Metadata: map[string]any{MetaSource: "https://example.com"}}.Source())
}

func TestCopyMetadata(t *testing.T) {
	assert.Nil(t, CopyMetadata(nil))

	src := map[string]any{"a": 1}
	dst := CopyMetadata(src)
	dst["b"] = 2

	assert.Len(t, src, 1)
	assert.Equal(t, 1, dst["a"])
}

func TestDistinctSources(t *testing.T) {
	chunks := []Chunk{
		{Metadata: map[string]any{MetaSource: "b.txt"}},
		{Metadata: map[string]any{MetaSource: "a.txt"}},
		{Metadata: map[string]any{MetaSource: "b.txt"}},
		{},
	}
	assert.Equal(t, []string{"b.txt", "a.txt"}, DistinctSources(chunks))
	assert.Nil(t, DistinctSources(nil))
}

func TestKnowledgeStats_IsReady(t *testing.T) {
	assert.False(t, KnowledgeStats{Status: KnowledgeStatusNotInitialized}.IsReady())
	assert.True(t, KnowledgeStats{Count: 3, Status: KnowledgeStatusReady}.IsReady())
}
