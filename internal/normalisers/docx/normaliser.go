// Package docx extracts paragraph text from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents. Every paragraph, empty ones included,
// becomes one line so that empty paragraphs act as paragraph breaks for
// the chunker.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword",
	}
}

// SupportedExtensions returns the file extensions this normaliser handles.
// Legacy .doc files are accepted but only parse when they are actually
// OOXML archives with the old extension.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx", ".doc"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a DOCX document to a document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a DOCX archive: %v", domain.ErrInvalidInput, err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}

	content, err := paragraphText(body)
	if err != nil {
		return nil, fmt.Errorf("%w: word/document.xml: %v", domain.ErrInvalidInput, err)
	}

	doc := domain.Document{
		ID:        uuid.New().String(),
		URI:       raw.URI,
		Title:     extractTitle(reader, raw.URI),
		Content:   content,
		Metadata:  domain.CopyMetadata(raw.Metadata),
		CreatedAt: time.Now(),
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata[domain.MetaFormat] = "docx"

	return &driven.NormaliseResult{
		Documents: []domain.Document{doc},
	}, nil
}

var errPartMissing = errors.New("part missing")

// readPart returns the bytes of a named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, name, errPartMissing)
}

// paragraphText walks the document XML and joins paragraph text with "\n".
// Runs inside hyperlinks, tables and text boxes are included. Tabs and
// explicit breaks are kept.
func paragraphText(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		depth      int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml or falls back to the
// file name.
func extractTitle(reader *zip.Reader, uri string) string {
	data, err := readPart(reader, "docProps/core.xml")
	if err == nil {
		var core coreXML
		if xml.Unmarshal(data, &core) == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}
	return plaintext.TitleFromPath(uri)
}
