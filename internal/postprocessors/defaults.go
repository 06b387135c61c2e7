package postprocessors

import (
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("window", buildWindow)
}

// buildChunker creates the paragraph chunker.
// Supported config keys:
//   - separator (string): Paragraph separator (default: "\n\n")
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if sep, ok := cfg["separator"].(string); ok {
		opts = append(opts, chunker.WithSeparator(sep))
	}
	return chunker.New(opts...), nil
}

// buildWindow creates the fixed-size window splitter.
// Supported config keys:
//   - window_size (int): Characters per window (default: 1000)
//   - overlap (int): Overlapping characters between windows (default: 200)
func buildWindow(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.WindowOption
	if size := getIntFromConfig(cfg, "window_size"); size > 0 {
		opts = append(opts, chunker.WithWindowSize(size))
	}
	if _, ok := cfg["overlap"]; ok {
		opts = append(opts, chunker.WithWindowOverlap(getIntFromConfig(cfg, "overlap")))
	}
	return chunker.NewWindow(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
