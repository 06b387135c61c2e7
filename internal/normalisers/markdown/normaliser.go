// Package markdown reads Markdown files as a single document with
// formatting markers removed and paragraph breaks preserved.
package markdown

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific, higher than plaintext
}

// Normalise converts a markdown document to a plain text document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	source = frontMatter.ReplaceAllString(source, "")

	doc := domain.Document{
		ID:        uuid.New().String(),
		URI:       raw.URI,
		Title:     extractTitle(source, raw.URI),
		Content:   Strip(source),
		Metadata:  domain.CopyMetadata(raw.Metadata),
		CreatedAt: time.Now(),
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata[domain.MetaFormat] = "markdown"

	return &driven.NormaliseResult{
		Documents: []domain.Document{doc},
	}, nil
}

var (
	frontMatter   = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)
	codeFence     = regexp.MustCompile("(?m)^\\s*(```|~~~).*$\n?")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	strong        = regexp.MustCompile(`(\*\*|__)(\S(?:.*?\S)?)(\*\*|__)`)
	emphasis      = regexp.MustCompile(`(^|[\s(])[*_](\S(?:[^*_]*?\S)?)[*_]`)
	blockquote    = regexp.MustCompile(`(?m)^>\s?`)
	rule          = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	listMarkers   = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^(\s*)\d+[.)]\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// extractTitle returns the first H1 heading, falling back to the file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return plaintext.TitleFromPath(uri)
}

// Strip removes Markdown formatting. Code block contents and link text are
// kept; blank-line paragraph breaks survive so the chunker can split on them.
func Strip(content string) string {
	content = codeFence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = rule.ReplaceAllString(content, "")
	content = strong.ReplaceAllString(content, "$2")
	content = emphasis.ReplaceAllString(content, "$1$2")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "$1")
	content = numberedList.ReplaceAllString(content, "$1")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
