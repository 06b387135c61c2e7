package domain

import "time"

// Knowledge base status strings reported by Stats.
const (
	KnowledgeStatusReady          = "Ready"
	KnowledgeStatusNotInitialized = "Not initialized"
)

// BuildResult reports the outcome of a knowledge base build.
type BuildResult struct {
	// Success is true when a new chunk set was installed.
	Success bool

	// Message is a human-readable summary of the outcome.
	Message string

	// ChunkCount is the number of chunks installed. Zero on failure.
	ChunkCount int

	// DocumentCount is the number of documents loaded.
	DocumentCount int

	// Notices are the per-item loader notices.
	Notices []Notice
}

// KnowledgeStats describes the current knowledge base.
type KnowledgeStats struct {
	// Count is the number of chunks held.
	Count int

	// Status is "Ready" when chunks are held, "Not initialized" otherwise.
	Status string

	// BuiltAt is when the current chunk set was installed.
	BuiltAt time.Time

	// Sources lists the distinct sources of the current chunks.
	Sources []string
}

// IsReady returns true if the knowledge base holds any chunks.
func (s KnowledgeStats) IsReady() bool {
	return s.Count > 0
}

// KnowledgeSnapshot is the persisted form of a knowledge base.
type KnowledgeSnapshot struct {
	Chunks  []Chunk
	BuiltAt time.Time
}

// DistinctSources returns the sources of chunks in first-seen order.
func DistinctSources(chunks []Chunk) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range chunks {
		s := c.Source()
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
