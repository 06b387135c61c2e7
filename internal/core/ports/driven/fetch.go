package driven

import "context"

// FetchResult is the raw outcome of retrieving a web page.
type FetchResult struct {
	// URL is the requested URL.
	URL string

	// HTML is the page markup. For headless fetches this is the rendered DOM.
	HTML string

	// Title is the page title reported by the browser, if any.
	Title string

	// StatusCode is the HTTP status. Headless fetches report 200 on success.
	StatusCode int

	// Method is "http" or "headless".
	Method string
}

// Fetch methods recorded in document metadata.
const (
	FetchMethodHTTP     = "http"
	FetchMethodHeadless = "headless"
)

// WebFetcher retrieves a page over plain HTTP.
// Non-2xx responses are returned as errors.
type WebFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// HeadlessFetcher loads a page in a headless browser, waits for the body to
// exist plus a settle delay, and returns the rendered DOM. Any failure to
// start or drive the browser is returned as an error.
type HeadlessFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}
