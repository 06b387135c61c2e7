package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

func TestNewWindow(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		w := NewWindow()
		if w.size != DefaultWindowSize || w.overlap != DefaultWindowOverlap {
			t.Errorf("unexpected defaults: size %d overlap %d", w.size, w.overlap)
		}
	})

	t.Run("overlap exceeds size", func(t *testing.T) {
		w := NewWindow(WithWindowSize(100), WithWindowOverlap(150))
		if w.overlap >= w.size {
			t.Error("overlap should be reduced when it exceeds window size")
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		w := NewWindow(WithWindowSize(0), WithWindowOverlap(-1))
		if w.size != DefaultWindowSize || w.overlap != DefaultWindowOverlap {
			t.Errorf("expected defaults, got size %d overlap %d", w.size, w.overlap)
		}
	})
}

func TestWindow_Name(t *testing.T) {
	if NewWindow().Name() != "window" {
		t.Errorf("expected name 'window', got %q", NewWindow().Name())
	}
}

func TestWindow_ShortChunksPassThrough(t *testing.T) {
	in := []domain.Chunk{{ID: "c1", Content: "short", Metadata: map[string]any{domain.MetaChunk: 0}}}

	out, err := NewWindow(WithWindowSize(10), WithWindowOverlap(2)).Process(context.Background(), &domain.Document{}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "c1" {
		t.Errorf("expected chunk to pass through unchanged, got %v", out)
	}
}

func TestWindow_SplitsLongChunk(t *testing.T) {
	in := []domain.Chunk{{
		ID:       "c1",
		Content:  "abcdefghijklmnopqrstuvwxy", // 25 chars
		Position: 4,
		Metadata: map[string]any{domain.MetaChunk: 4},
	}}

	out, err := NewWindow(WithWindowSize(10), WithWindowOverlap(2)).Process(context.Background(), &domain.Document{}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"abcdefghij", "ijklmnopqr", "qrstuvwxy"}
	if len(out) != len(want) {
		t.Fatalf("expected %d windows, got %d", len(want), len(out))
	}
	for i, c := range out {
		if c.Content != want[i] {
			t.Errorf("window %d: expected %q, got %q", i, want[i], c.Content)
		}
		if c.Metadata[MetaWindow] != i || c.Metadata[domain.MetaChunk] != 4 || c.Position != 4 {
			t.Errorf("window %d: metadata not carried: %v", i, c.Metadata)
		}
	}
}

func TestWindow_MultiByteSafe(t *testing.T) {
	content := strings.Repeat("é", 15)
	out, err := NewWindow(WithWindowSize(10), WithWindowOverlap(0)).Process(context.Background(), &domain.Document{Content: content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(out))
	}
	if out[0].Content != strings.Repeat("é", 10) || out[1].Content != strings.Repeat("é", 5) {
		t.Errorf("windows split mid-rune: %q %q", out[0].Content, out[1].Content)
	}
}

func TestWindow_FirstInPipelineEmpty(t *testing.T) {
	out, err := NewWindow().Process(context.Background(), &domain.Document{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no chunks, got %d", len(out))
	}
}
