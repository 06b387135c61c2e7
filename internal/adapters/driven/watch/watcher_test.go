package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "faq.txt")
	b := filepath.Join(dir, "policy.pdf")

	w, err := New([]string{b, "https://example.com/help", a, a})

	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, w.Files())
	assert.Equal(t, []string{dir}, w.dirs)
	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestNew_OnlyURLs(t *testing.T) {
	_, err := New([]string{"https://example.com"})

	assert.Error(t, err)
}

func TestWatcher_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "faq.txt")
	w, err := New([]string{watched})
	require.NoError(t, err)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: watched, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: watched, Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: watched, Op: fsnotify.Remove}, true},
		{"rename", fsnotify.Event{Name: watched, Op: fsnotify.Rename}, true},
		{"write and chmod", fsnotify.Event{Name: watched, Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"chmod only", fsnotify.Event{Name: watched, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "other.txt"), Op: fsnotify.Write}, false},
		{"editor swap file", fsnotify.Event{Name: filepath.Join(dir, ".faq.txt.swp"), Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := w.handleEvent(tt.event)

			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, watched, path)
			}
		})
	}
}

func TestWatcher_Run_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	faq := filepath.Join(dir, "faq.txt")
	require.NoError(t, os.WriteFile(faq, []byte("v1"), 0600))

	w, err := New([]string{faq}, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)

	var mu sync.Mutex
	var batches [][]string
	got := make(chan struct{}, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() {
		runErr <- w.Run(ctx, func(_ context.Context, changed []string) {
			mu.Lock()
			batches = append(batches, changed)
			mu.Unlock()
			got <- struct{}{}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(faq, []byte("v2"), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0600))
	}

	select {
	case <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.NoError(t, <-runErr)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, batches)
	assert.Equal(t, []string{faq}, batches[0])
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New([]string{"/non/existent/dir/faq.txt"})
	require.NoError(t, err)

	err = w.Run(context.Background(), func(context.Context, []string) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory not found")
}

func TestWatcher_Closed(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "faq.txt")})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	err = w.Run(context.Background(), func(context.Context, []string) {})
	assert.ErrorIs(t, err, ErrClosed)
}
