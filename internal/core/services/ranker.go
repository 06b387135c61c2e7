package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// wordPattern matches runs of word characters, including non-ASCII letters.
var wordPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Ranker scores chunks by lexical overlap with a query.
//
// The score of a chunk is the number of distinct lower-cased words it shares
// with the query. There is no stemming or normalisation: a query only
// matches chunks that contain its exact words.
type Ranker struct {
	store driven.KnowledgeStore
}

// NewRanker creates a ranker reading from store.
func NewRanker(store driven.KnowledgeStore) *Ranker {
	return &Ranker{store: store}
}

// Rank returns at most k chunks from the store that share a word with query.
func (r *Ranker) Rank(query string, k int) []domain.RankedResult {
	if r.store == nil {
		return nil
	}
	return RankChunks(r.store.Chunks(), query, k)
}

// RankChunks scores chunks against query. Chunks with no shared word are
// excluded. Results are ordered by descending score; equal scores keep
// ingestion order.
func RankChunks(chunks []domain.Chunk, query string, k int) []domain.RankedResult {
	if k <= 0 || len(chunks) == 0 {
		return nil
	}
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return nil
	}

	var scored []domain.RankedResult
	for _, c := range chunks {
		score := overlap(queryWords, wordSet(c.Content))
		if score > 0 {
			scored = append(scored, domain.RankedResult{Chunk: c, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	logger.Debug("Ranked %d chunks for %q: %d matched", len(chunks), query, len(scored))
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func wordSet(text string) map[string]struct{} {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
