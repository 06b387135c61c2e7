package domain

// RawDocument represents opaque bytes read from a file or fetched from a URL.
// It is the input to a normaliser.
type RawDocument struct {
	// URI is the original location (file path or URL).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]any
}

// RenderMode selects how URLs are fetched.
type RenderMode int

const (
	// RenderStatic fetches the page over plain HTTP.
	RenderStatic RenderMode = iota

	// RenderJavaScript loads the page in a headless browser so client-side
	// scripts run before text is extracted.
	RenderJavaScript
)

// String returns the string representation.
func (m RenderMode) String() string {
	switch m {
	case RenderJavaScript:
		return "JavaScript rendering"
	default:
		return "standard"
	}
}

// NoticeLevel grades a progress notice.
type NoticeLevel string

// Notice levels.
const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a human-readable status line emitted while loading or building.
// Notices are observational only.
type Notice struct {
	Level   NoticeLevel
	Source  string
	Message string
}

// LoadResult is the output of the document loader.
type LoadResult struct {
	// Documents are the successfully loaded documents, in input order.
	Documents []Document

	// Notices are per-item progress and warning lines.
	Notices []Notice

	// Failed counts inputs that produced an error.
	Failed int
}
