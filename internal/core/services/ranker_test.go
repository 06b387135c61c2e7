package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

func chunk(id, content string) domain.Chunk {
	return domain.Chunk{
		ID:       id,
		Content:  content,
		Metadata: map[string]any{domain.MetaSource: "faq.txt"},
	}
}

func TestRankChunks_ScoresSharedWords(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("a", "Alpha beta."),
		chunk("b", "gamma delta"),
	}

	results := RankChunks(chunks, "beta", 3)

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, 1, results[0].Score)
}

func TestRankChunks_OrdersByScore(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("one", "refund policy"),
		chunk("three", "refund policy for orders"),
		chunk("none", "shipping times"),
	}

	results := RankChunks(chunks, "What is the refund policy for orders?", 3)

	require.Len(t, results, 2)
	assert.Equal(t, "three", results[0].Chunk.ID)
	assert.Equal(t, 4, results[0].Score)
	assert.Equal(t, "one", results[1].Chunk.ID)
	assert.Equal(t, 2, results[1].Score)
}

func TestRankChunks_TiesKeepIngestionOrder(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("first", "opening hours"),
		chunk("second", "hours of support"),
		chunk("third", "more hours"),
	}

	results := RankChunks(chunks, "hours", 3)

	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestRankChunks_CaseInsensitiveAndDistinct(t *testing.T) {
	chunks := []domain.Chunk{chunk("a", "PASSWORD password Password reset")}

	results := RankChunks(chunks, "password password", 3)

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Score)
}

func TestRankChunks_NoStemming(t *testing.T) {
	chunks := []domain.Chunk{chunk("a", "We ship orders daily")}

	assert.Empty(t, RankChunks(chunks, "shipping order", 3))
}

func TestRankChunks_UnicodeWords(t *testing.T) {
	chunks := []domain.Chunk{chunk("a", "Les frais de réexpédition sont offerts")}

	results := RankChunks(chunks, "réexpédition", 3)

	require.Len(t, results, 1)
}

func TestRankChunks_Bounds(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("a", "alpha"),
		chunk("b", "alpha beta"),
		chunk("c", "alpha gamma"),
		chunk("d", "alpha delta"),
	}

	tests := []struct {
		name  string
		query string
		k     int
		want  int
	}{
		{"k limits results", "alpha", 2, 2},
		{"k larger than matches", "alpha", 10, 4},
		{"zero k", "alpha", 0, 0},
		{"negative k", "alpha", -1, 0},
		{"empty query", "", 3, 0},
		{"punctuation only", "?!", 3, 0},
		{"no match", "omega", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, RankChunks(chunks, tt.query, tt.k), tt.want)
		})
	}
}

func TestRankChunks_EmptyInput(t *testing.T) {
	assert.Nil(t, RankChunks(nil, "alpha", 3))
}

func TestRanker_ReadsStore(t *testing.T) {
	store := memory.NewKnowledgeStore()
	store.Replace([]domain.Chunk{chunk("a", "billing address"), chunk("b", "delivery address")})
	ranker := NewRanker(store)

	results := ranker.Rank("billing", 3)

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)

	store.Clear()
	assert.Empty(t, ranker.Rank("billing", 3))
}

func TestRanker_NilStore(t *testing.T) {
	assert.Nil(t, NewRanker(nil).Rank("anything", 3))
}
