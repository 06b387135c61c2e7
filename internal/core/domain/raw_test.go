package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRawDocument_Fields tests RawDocument structure fields
func TestRawDocument_Fields(t *testing.T) {
	raw := RawDocument{
		URI:      "/docs/manual.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("PDF content here"),
		Metadata: map[string]any{"size": 1024},
	}

	assert.Equal(t, "/docs/manual.pdf", raw.URI)
	assert.Equal(t, "application/pdf", raw.MIMEType)
	assert.Equal(t, []byte("PDF content here"), raw.Content)
	assert.Equal(t, 1024, raw.Metadata["size"])
}

func TestRenderMode_String(t *testing.T) {
	assert.Equal(t, "standard", RenderStatic.String())
	assert.Equal(t, "JavaScript rendering", RenderJavaScript.String())
}
