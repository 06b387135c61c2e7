// Package watch rebuilds the knowledge base when local source files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/voxdesk/internal/logger"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher closed")

// Watcher reports changes to a fixed set of files. fsnotify cannot follow a
// file across the rename-and-replace that many editors use, so the parent
// directories are watched and events filtered by name.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	debounce time.Duration

	mu     sync.Mutex
	closed bool
	fsw    *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for paths. URLs and other non-local entries are
// ignored; it is an error if no local file remains.
func New(paths []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]struct{}),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	seen := make(map[string]bool)
	for _, p := range paths {
		if strings.Contains(p, "://") {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	if len(w.files) == 0 {
		return nil, errors.New("no local files to watch")
	}
	sort.Strings(w.dirs)
	return w, nil
}

// Files returns the watched files in sorted order.
func (w *Watcher) Files() []string {
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Run blocks until ctx is cancelled or Close is called, invoking onChange
// with the sorted set of files that changed once events settle. onChange
// runs on Run's goroutine, so a slow rebuild delays the next batch rather
// than overlapping it.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	fsw, err := w.start()
	if err != nil {
		return err
	}
	defer w.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path, relevant := w.handleEvent(event)
			if !relevant {
				continue
			}
			logger.Debug("Watch: %s %s", event.Op, path)
			pending[path] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			onChange(ctx, changed)
		}
	}
}

func (w *Watcher) start() (*fsnotify.Watcher, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	if w.fsw != nil {
		return nil, errors.New("watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range w.dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: directory not found", dir)
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.fsw = fsw
	logger.Info("Watching %d file(s) in %d director(ies)", len(w.files), len(w.dirs))
	return fsw, nil
}

// handleEvent returns the watched file an event concerns, if any.
// Permission-only changes are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	path := filepath.Clean(event.Name)
	if _, ok := w.files[path]; !ok {
		return "", false
	}
	return path, true
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
