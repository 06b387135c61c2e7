package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

func testChunks(contents ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = domain.Chunk{
			ID:       c,
			Content:  c,
			Position: i,
			Metadata: map[string]any{domain.MetaSource: "faq.txt", domain.MetaChunk: i},
		}
	}
	return chunks
}

func TestKnowledgeStore_Empty(t *testing.T) {
	store := NewKnowledgeStore()

	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.Chunks())
}

func TestKnowledgeStore_ReplaceIsNotAdditive(t *testing.T) {
	store := NewKnowledgeStore()

	store.Replace(testChunks("a", "b", "c"))
	assert.Equal(t, 3, store.Count())

	store.Replace(testChunks("d"))
	require.Len(t, store.Chunks(), 1)
	assert.Equal(t, "d", store.Chunks()[0].Content)
}

func TestKnowledgeStore_ReplaceCopiesInput(t *testing.T) {
	store := NewKnowledgeStore()
	input := testChunks("a", "b")

	store.Replace(input)
	input[0].Content = "mutated"

	assert.Equal(t, "a", store.Chunks()[0].Content)
}

func TestKnowledgeStore_PreservesOrder(t *testing.T) {
	store := NewKnowledgeStore()
	store.Replace(testChunks("first", "second", "third"))

	got := store.Chunks()
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
	assert.Equal(t, "third", got[2].Content)
}

func TestKnowledgeStore_Clear(t *testing.T) {
	store := NewKnowledgeStore()
	store.Replace(testChunks("a"))

	store.Clear()

	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.Chunks())
}

func TestKnowledgeStore_ReadersSeeWholeSets(t *testing.T) {
	store := NewKnowledgeStore()
	small := testChunks("a")
	large := testChunks("a", "b", "c", "d")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				store.Replace(small)
			} else {
				store.Replace(large)
			}
		}(i)
		go func() {
			defer wg.Done()
			n := len(store.Chunks())
			assert.Contains(t, []int{0, 1, 4}, n)
		}()
	}
	wg.Wait()
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store := NewSnapshotStore()

	_, err := store.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	builtAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.SaveSnapshot(ctx, domain.KnowledgeSnapshot{
		Chunks:  testChunks("a", "b"),
		BuiltAt: builtAt,
	}))

	snap, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Chunks, 2)
	assert.Equal(t, builtAt, snap.BuiltAt)
	assert.Equal(t, "faq.txt", snap.Chunks[1].Source())

	require.NoError(t, store.ClearSnapshot(ctx))
	_, err = store.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, store.Close())
}

func TestSnapshotStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSnapshotStore().SaveSnapshot(ctx, domain.KnowledgeSnapshot{})
	assert.ErrorIs(t, err, context.Canceled)
}
