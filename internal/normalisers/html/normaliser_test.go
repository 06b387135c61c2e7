package html

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

var longParagraph = strings.Repeat("Our support team answers every ticket within one business day. ", 3)

func TestSupportedTypes(t *testing.T) {
	normaliser := New()
	assert.ElementsMatch(t, []string{"text/html", "application/xhtml+xml"}, normaliser.SupportedMIMETypes())
	assert.Contains(t, normaliser.SupportedExtensions(), ".html")
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_LocalFile(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/path/to/help-center.html",
		Content: []byte("<html><head><title>Test Page</title></head><body><p>Hello World</p></body></html>"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)

	doc := result.Documents[0]
	assert.Equal(t, "Test Page", doc.Title)
	assert.Equal(t, "Test Page Hello World", doc.Content)
	assert.Equal(t, "html", doc.Metadata[domain.MetaFormat])
	assert.NotContains(t, doc.Metadata, domain.MetaIsJSApp)
}

func TestNormalise_URLStripsChrome(t *testing.T) {
	markup := `<html><head><title>Pricing</title><style>p{}</style></head><body>
<header>Site Header</header>
<nav><a href="/">Home</a></nav>
<main><h1>Plans</h1><p>` + longParagraph + `</p><script>var x = 1;</script></main>
<footer>Copyright</footer>
</body></html>`

	raw := &domain.RawDocument{
		URI:     "https://example.com/pricing",
		Content: []byte(markup),
		Metadata: map[string]any{
			domain.MetaSource:     "https://example.com/pricing",
			domain.MetaType:       "url",
			domain.MetaStatusCode: 200,
			domain.MetaMethod:     driven.FetchMethodHTTP,
		},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Documents[0]
	assert.Equal(t, "Pricing", doc.Title)
	assert.True(t, strings.HasPrefix(doc.Content, "Pricing Plans Our support team"))
	for _, gone := range []string{"Site Header", "Home", "Copyright", "var x", "p{}"} {
		assert.NotContains(t, doc.Content, gone)
	}
	assert.NotContains(t, doc.Content, "\n")
	assert.NotContains(t, doc.Content, "  ")
	assert.Equal(t, false, doc.Metadata[domain.MetaIsJSApp])
	assert.Equal(t, 200, doc.Metadata[domain.MetaStatusCode])
	assert.Equal(t, "Pricing", doc.Metadata[domain.MetaTitle])
}

func TestNormalise_TitleFallsBackToURL(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "https://example.com/a",
		Content:  []byte("<p>" + longParagraph + "</p>"),
		Metadata: map[string]any{domain.MetaType: "url"},
	}
	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", result.Documents[0].Title)
}

func TestNormalise_HeadlessAlwaysFlagged(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "https://app.example.com",
		Content: []byte("<body><p>" + longParagraph + "</p></body>"),
		Metadata: map[string]any{
			domain.MetaType:   "url",
			domain.MetaMethod: driven.FetchMethodHeadless,
			domain.MetaTitle:  "Rendered Title",
		},
	}
	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Documents[0]
	assert.Equal(t, "Rendered Title", doc.Title)
	assert.Equal(t, true, doc.Metadata[domain.MetaIsJSApp])
}

func TestPage_LooksLikeApp(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		expected bool
	}{
		{"short text", "<p>Loading...</p>", true},
		{"noscript marker", "<noscript>You need to enable JavaScript to run this app.</noscript><p>" + longParagraph + "</p>", true},
		{"react root", `<div id="root"></div><p>` + longParagraph + `</p>`, true},
		{"vue app", `<div id="app"><p>` + longParagraph + `</p></div>`, true},
		{"static content", "<article><p>" + longParagraph + "</p></article>", false},
		{"root id on non-div", `<section id="root"><p>` + longParagraph + `</p></section>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Extract([]byte(tt.markup))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page.LooksLikeApp())
		})
	}
}

func TestExtract_BlocksDoNotRunTogether(t *testing.T) {
	page, err := Extract([]byte("<ul><li>One</li><li>Two</li></ul><p>Three<br>Four</p>"))
	require.NoError(t, err)
	assert.Equal(t, "One Two Three Four", page.Text)
}

func TestExtract_EntitiesDecoded(t *testing.T) {
	page, err := Extract([]byte("<title>Q&amp;A</title><p>Fish &amp; chips</p>"))
	require.NoError(t, err)
	assert.Equal(t, "Q&A", page.Title)
	assert.Equal(t, "Q&A Fish & chips", page.Text)
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lines joined", "  a  \n\n b ", "a b"},
		{"double spaces split", "one  two   three", "one two three"},
		{"single spaces kept", "one two", "one two"},
		{"empty", "\n \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CollapseWhitespace(tt.input))
		})
	}
}
