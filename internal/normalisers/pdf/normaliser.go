// Package pdf extracts per-page text from PDF files using pdftotext
// (poppler-utils).
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

const toolName = "pdftotext"

// maxTitleLength is the longest first line accepted as a title.
const maxTitleLength = 200

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Normaliser handles PDF documents. Each page with text becomes its own
// document carrying a zero-based "page" metadata value.
type Normaliser struct {
	runner    CommandRunner
	checkTool bool
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}, checkTool: true}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return "PDF support requires pdftotext (poppler):\n" +
		"  macOS:          brew install poppler\n" +
		"  Debian/Ubuntu:  apt install poppler-utils\n" +
		"  Fedora:         dnf install poppler-utils"
}

// Normalise converts a PDF to one document per non-empty page.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if n.checkTool {
		if err := CheckAvailable(); err != nil {
			return nil, err
		}
	}

	tmp, err := os.CreateTemp("", "voxdesk-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw.Content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed for %s: %w", raw.URI, err)
	}

	pages := SplitPages(string(out))

	title := ""
	if len(pages) > 0 {
		title = extractTitle(pages[0].Text, raw.URI)
	} else {
		title = plaintext.TitleFromPath(raw.URI)
	}

	now := time.Now()
	docs := make([]domain.Document, 0, len(pages))
	for _, page := range pages {
		meta := domain.CopyMetadata(raw.Metadata)
		if meta == nil {
			meta = make(map[string]any)
		}
		meta[domain.MetaFormat] = "pdf"
		meta[domain.MetaPage] = page.Index

		docs = append(docs, domain.Document{
			ID:        uuid.New().String(),
			URI:       raw.URI,
			Title:     title,
			Content:   page.Text,
			Metadata:  meta,
			CreatedAt: now,
		})
	}

	return &driven.NormaliseResult{Documents: docs}, nil
}

// Page is the extracted text of one PDF page.
type Page struct {
	// Index is the zero-based page number in the original file.
	Index int
	Text  string
}

// SplitPages splits pdftotext output on form feeds. Pages whose text is
// blank are dropped; surviving pages keep their original index.
func SplitPages(out string) []Page {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	var pages []Page
	for i, text := range strings.Split(out, "\f") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Index: i, Text: strings.Trim(text, "\n")})
	}
	return pages
}

// extractTitle uses the first short non-empty line, falling back to the
// file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxTitleLength {
			continue
		}
		return line
	}
	return plaintext.TitleFromPath(uri)
}
