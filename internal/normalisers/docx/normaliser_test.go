package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	if coreXML != "" {
		core, err := w.Create("docProps/core.xml")
		require.NoError(t, err)
		_, err = core.Write([]byte(coreXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func body(paragraphs string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><w:document ` + wordNS + `><w:body>` + paragraphs + `</w:body></w:document>`
}

func TestSupportedTypes(t *testing.T) {
	normaliser := New()
	assert.Contains(t, normaliser.SupportedMIMETypes(), "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	assert.ElementsMatch(t, []string{".docx", ".doc"}, normaliser.SupportedExtensions())
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_Success(t *testing.T) {
	coreXML := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Warranty Terms</dc:title>
</cp:coreProperties>`

	content := createTestDOCX(t, body(`<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`), coreXML)

	raw := &domain.RawDocument{
		URI:      "/path/to/warranty.docx",
		Content:  content,
		Metadata: map[string]any{domain.MetaSource: "/path/to/warranty.docx"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)

	doc := result.Documents[0]
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Warranty Terms", doc.Title)
	assert.Equal(t, "Hello World", doc.Content)
	assert.Equal(t, "docx", doc.Metadata[domain.MetaFormat])
	assert.Equal(t, "/path/to/warranty.docx", doc.Metadata[domain.MetaSource])
}

func TestNormalise_ParagraphsJoinedWithNewline(t *testing.T) {
	xmlBody := body(
		`<w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>` +
			`<w:p></w:p>` +
			`<w:p><w:hyperlink><w:r><w:t>Linked text</w:t></w:r></w:hyperlink></w:p>` +
			`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p>`,
	)
	raw := &domain.RawDocument{URI: "/x/guide.docx", Content: createTestDOCX(t, xmlBody, "")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Documents[0]
	assert.Equal(t, "First paragraph.\n\nLinked text\na\tb", doc.Content)
	assert.Equal(t, "guide", doc.Title)
}

func TestNormalise_TableParagraphs(t *testing.T) {
	xmlBody := body(`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	raw := &domain.RawDocument{URI: "t.docx", Content: createTestDOCX(t, xmlBody, "")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Cell", result.Documents[0].Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_InvalidZip(t *testing.T) {
	raw := &domain.RawDocument{URI: "legacy.doc", Content: []byte{0xD0, 0xCF, 0x11, 0xE0}}

	result, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "not a DOCX archive")
	assert.Nil(t, result)
}

func TestNormalise_MissingDocumentXML(t *testing.T) {
	raw := &domain.RawDocument{URI: "x.docx", Content: createTestDOCX(t, "", "")}

	_, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, errPartMissing)
}

func TestNormalise_MalformedXML(t *testing.T) {
	raw := &domain.RawDocument{URI: "x.docx", Content: createTestDOCX(t, "<w:document><w:body>", "")}

	_, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
