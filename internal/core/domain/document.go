package domain

import "time"

// Metadata keys shared by loaders, the chunker and the retrieval pipeline.
const (
	// MetaSource is the file path or URL the document came from.
	MetaSource = "source"

	// MetaType is "file" or "url".
	MetaType = "type"

	// MetaTitle is the page or document title.
	MetaTitle = "title"

	// MetaPage is the zero-based page index for paginated formats.
	MetaPage = "page"

	// MetaChunk is the paragraph ordinal assigned by the chunker.
	MetaChunk = "chunk"

	// MetaFormat is the normaliser format (plaintext, pdf, docx, html).
	MetaFormat = "format"

	// MetaStatusCode is the HTTP status code of a fetched page.
	MetaStatusCode = "status_code"

	// MetaMethod is the fetch method used for a URL (http or headless).
	MetaMethod = "method"

	// MetaIsJSApp flags a page that looks like a client-rendered application.
	MetaIsJSApp = "is_js_app"

	// MetaFallback is true when headless rendering failed and plain HTTP was used.
	MetaFallback = "fallback"

	// MetaFallbackReason holds the headless failure that triggered the fallback.
	MetaFallbackReason = "fallback_reason"
)

// Document represents a normalised unit of text with its source metadata.
// Documents are treated as immutable once produced by the loader.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was loaded.
	CreatedAt time.Time
}

// Chunk represents a retrieval unit cut from a document.
// Chunk content is never empty.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Metadata holds the parent metadata plus the chunk index.
	Metadata map[string]any
}

// Source returns the source identifier recorded in the chunk metadata.
func (c Chunk) Source() string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata[MetaSource].(string)
	return s
}

// RankedResult pairs a chunk with its lexical overlap score.
type RankedResult struct {
	Chunk Chunk
	Score int
}

// Answer is the output of a retrieval-augmented query.
type Answer struct {
	// Text is the generated answer or a fixed status message.
	Text string

	// Sources are the chunks that were placed in the prompt context.
	Sources []Chunk
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
