package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/normalisers/docx"
	"github.com/custodia-labs/voxdesk/internal/normalisers/html"
	"github.com/custodia-labs/voxdesk/internal/normalisers/markdown"
	"github.com/custodia-labs/voxdesk/internal/normalisers/pdf"
	"github.com/custodia-labs/voxdesk/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry selects a normaliser by file extension first, then by MIME type.
// When several normalisers match, the highest priority wins.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(html.New())
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Supports reports whether a normaliser handles the extension.
func (r *Registry) Supports(ext string) bool {
	return r.byExtension(ext) != nil
}

// Extensions returns every supported extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var exts []string
	for _, n := range r.normalisers {
		for _, ext := range n.SupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	sort.Strings(exts)
	return exts
}

// Normalise dispatches raw to the best matching normaliser. An explicit
// MIME type is tried first, since fetched pages often carry URL paths with
// misleading extensions. The URI extension is tried next.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	n := r.byMIME(raw.MIMEType)
	if n == nil {
		n = r.byExtension(filepath.Ext(raw.URI))
	}
	if n == nil {
		ext := filepath.Ext(raw.URI)
		if ext == "" {
			ext = raw.MIMEType
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}

	return n.Normalise(ctx, raw)
}

func (r *Registry) byExtension(ext string) driven.Normaliser {
	ext = strings.ToLower(ext)
	if ext == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.normalisers {
		for _, e := range n.SupportedExtensions() {
			if e == ext {
				return n
			}
		}
	}
	return nil
}

func (r *Registry) byMIME(mimeType string) driven.Normaliser {
	// Strip parameters such as "; charset=utf-8".
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.normalisers {
		for _, m := range n.SupportedMIMETypes() {
			if m == mimeType {
				return n
			}
		}
	}
	return nil
}
