package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// minAppTextLength is the visible text length under which a page is assumed
// to be an unrendered JavaScript application.
const minAppTextLength = 100

// jsMarkers are phrases typical of a page served without its client bundle.
var jsMarkers = []string{
	"You need to enable JavaScript",
	"enable JavaScript to run this app",
}

// dropped elements are removed with their whole subtree.
var dropped = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Nav:    true,
	atom.Footer: true,
	atom.Header: true,
}

// block elements end a line so adjacent blocks do not run together.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Blockquote: true, atom.Pre: true,
	atom.Table: true, atom.Td: true, atom.Th: true, atom.Title: true, atom.Main: true,
	atom.Ul: true, atom.Ol: true, atom.Hr: true,
}

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts an HTML page to a single document.
//
// Title precedence: a non-empty "title" already in metadata (set by the
// headless fetcher), then the <title> element, then the URL for fetched
// pages or the file name for local files.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page, err := Extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", domain.ErrInvalidInput, err)
	}

	meta := domain.CopyMetadata(raw.Metadata)
	if meta == nil {
		meta = make(map[string]any)
	}

	isURL := meta[domain.MetaType] == "url"
	title, _ := meta[domain.MetaTitle].(string)
	if title == "" {
		title = page.Title
	}
	if title == "" {
		if isURL {
			title = raw.URI
		} else {
			title = plaintext.TitleFromPath(raw.URI)
		}
	}

	// A rendered page has already run its scripts, so it is flagged by
	// method rather than by inspecting what it left behind.
	isApp := page.LooksLikeApp()
	if meta[domain.MetaMethod] == driven.FetchMethodHeadless {
		isApp = true
	}

	meta[domain.MetaFormat] = "html"
	meta[domain.MetaTitle] = title
	if isURL {
		meta[domain.MetaIsJSApp] = isApp
	}

	doc := domain.Document{
		ID:        uuid.New().String(),
		URI:       raw.URI,
		Title:     title,
		Content:   page.Text,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}

	return &driven.NormaliseResult{
		Documents: []domain.Document{doc},
	}, nil
}

// Page is the readable content of an HTML document.
type Page struct {
	// Title is the text of the first <title> element.
	Title string

	// Text is the visible text collapsed to single spaces.
	Text string

	// HasAppRoot is true when a <div id="root"> or <div id="app"> exists.
	HasAppRoot bool
}

// LooksLikeApp reports whether the page is probably a client-rendered
// application whose content is missing without JavaScript.
func (p Page) LooksLikeApp() bool {
	for _, marker := range jsMarkers {
		if strings.Contains(p.Text, marker) {
			return true
		}
	}
	return len(strings.TrimSpace(p.Text)) < minAppTextLength || p.HasAppRoot
}

// Extract parses markup and returns its title and visible text.
func Extract(markup []byte) (Page, error) {
	root, err := xhtml.Parse(bytes.NewReader(markup))
	if err != nil {
		return Page{}, err
	}

	var (
		page  Page
		text  strings.Builder
		title bool
	)

	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			if dropped[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Div {
				if id := attr(n, "id"); id == "root" || id == "app" {
					page.HasAppRoot = true
				}
			}
			if n.DataAtom == atom.Title && !title {
				title = true
				page.Title = strings.TrimSpace(nodeText(n))
			}
		}
		if n.Type == xhtml.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == xhtml.ElementNode && block[n.DataAtom] {
			text.WriteByte('\n')
		}
	}
	walk(root)

	page.Text = CollapseWhitespace(text.String())
	return page, nil
}

// CollapseWhitespace trims every line, splits lines on runs of two spaces,
// and joins the non-empty phrases with single spaces.
func CollapseWhitespace(text string) string {
	var phrases []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			phrase = strings.TrimSpace(phrase)
			if phrase != "" {
				phrases = append(phrases, phrase)
			}
		}
	}
	return strings.Join(phrases, " ")
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *xhtml.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
