// Package headless renders JavaScript-driven pages in a headless Chrome
// through chromedp.
package headless

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.HeadlessFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultBodyWait    = 10 * time.Second
	DefaultSettleDelay = 3 * time.Second
	DefaultNavTimeout  = 10 * time.Second
)

// browserCandidates are tried in order when no executable is configured.
var browserCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// Config configures the headless fetcher.
type Config struct {
	// ExecPath is the browser executable. Empty searches well-known names.
	ExecPath string

	// BodyWait bounds the wait for the document body (default: 10s).
	BodyWait time.Duration

	// SettleDelay is the extra wait for client-side rendering (default: 3s).
	// Negative disables the wait.
	SettleDelay time.Duration

	// UserAgent overrides the browser's user agent.
	UserAgent string

	// NavTimeout bounds navigation up to the page load event (default: 10s).
	NavTimeout time.Duration
}

// Fetcher loads pages in a fresh headless browser per request.
type Fetcher struct {
	cfg        Config
	candidates []string
	lookPath   func(string) (string, error)
}

// New creates a headless fetcher. No browser is started until Fetch.
func New(cfg Config) *Fetcher {
	if cfg.BodyWait <= 0 {
		cfg.BodyWait = DefaultBodyWait
	}
	switch {
	case cfg.SettleDelay == 0:
		cfg.SettleDelay = DefaultSettleDelay
	case cfg.SettleDelay < 0:
		cfg.SettleDelay = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = DefaultNavTimeout
	}
	return &Fetcher{cfg: cfg, candidates: browserCandidates, lookPath: exec.LookPath}
}

// Fetch navigates to url, waits for the body and the settle delay, and
// returns the rendered DOM. A missing browser is reported as
// domain.ErrHeadlessUnavailable; any other failure as domain.ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*driven.FetchResult, error) {
	browser, err := f.findBrowser()
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browser),
		chromedp.UserAgent(f.cfg.UserAgent),
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	)
	if os.Geteuid() == 0 {
		// Chrome refuses to run as root with the sandbox enabled.
		opts = append(opts, chromedp.NoSandbox)
	}

	// A load event that never fires must not hang the build.
	ctx, cancel := context.WithTimeout(ctx, f.Deadline())
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var title, html string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		f.waitForBody(),
		chromedp.Sleep(f.cfg.SettleDelay),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: headless render of %s: %w", domain.ErrFetchFailed, url, err)
	}

	logger.Debug("Rendered %s in %s (%d bytes)", url, time.Since(start).Round(time.Millisecond), len(html))

	return &driven.FetchResult{
		URL:        url,
		HTML:       html,
		Title:      title,
		StatusCode: 200,
		Method:     driven.FetchMethodHeadless,
	}, nil
}

// Deadline is the longest a single Fetch may take.
func (f *Fetcher) Deadline() time.Duration {
	return f.cfg.NavTimeout + f.cfg.BodyWait + f.cfg.SettleDelay
}

// waitForBody waits for <body> no longer than BodyWait.
func (f *Fetcher) waitForBody() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, f.cfg.BodyWait)
		defer cancel()
		if err := chromedp.WaitReady("body", chromedp.ByQuery).Do(waitCtx); err != nil {
			return fmt.Errorf("waiting for body: %w", err)
		}
		return nil
	})
}

// findBrowser resolves the browser executable.
func (f *Fetcher) findBrowser() (string, error) {
	if f.cfg.ExecPath != "" {
		if path, ok := f.resolve(f.cfg.ExecPath); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: browser %q not found", domain.ErrHeadlessUnavailable, f.cfg.ExecPath)
	}
	for _, candidate := range f.candidates {
		if path, ok := f.resolve(candidate); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no Chrome or Chromium executable found", domain.ErrHeadlessUnavailable)
}

func (f *Fetcher) resolve(name string) (string, bool) {
	if filepath.IsAbs(name) {
		info, err := os.Stat(name)
		return name, err == nil && !info.IsDir()
	}
	path, err := f.lookPath(name)
	return path, err == nil
}

// Available reports whether a browser executable can be found.
func (f *Fetcher) Available() bool {
	_, err := f.findBrowser()
	return err == nil
}
