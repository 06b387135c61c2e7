package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// DocumentLoader turns file paths and URLs into normalised documents.
//
// Each input is loaded independently: a missing file, a parse failure or a
// network error is reported as a notice and the remaining inputs are still
// processed.
type DocumentLoader struct {
	registry driven.NormaliserRegistry
	web      driven.WebFetcher
	headless driven.HeadlessFetcher
	readFile func(string) ([]byte, error)
}

// NewDocumentLoader creates a loader. headless may be nil, in which case
// JavaScript rendering requests use plain HTTP.
func NewDocumentLoader(
	registry driven.NormaliserRegistry,
	web driven.WebFetcher,
	headless driven.HeadlessFetcher,
) *DocumentLoader {
	return &DocumentLoader{
		registry: registry,
		web:      web,
		headless: headless,
		readFile: os.ReadFile,
	}
}

// IsURL reports whether source has both a scheme and a host.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Load loads every source in order. The error return is reserved for
// context cancellation; per-item failures are counted in the result.
func (l *DocumentLoader) Load(
	ctx context.Context, sources []string, mode domain.RenderMode,
) (*domain.LoadResult, error) {
	logger.Section("Document Loading")
	logger.Debug("Sources: %d, mode: %s", len(sources), mode)

	result := &domain.LoadResult{}
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}

		var (
			docs    []domain.Document
			notices []domain.Notice
			err     error
		)
		if IsURL(source) {
			docs, notices, err = l.loadURL(ctx, source, mode)
		} else {
			docs, notices, err = l.loadFile(ctx, source)
		}
		result.Notices = append(result.Notices, notices...)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return result, ctxErr
				}
			}
			if errors.Is(err, domain.ErrUnsupportedType) {
				result.Notices = append(result.Notices, notice(domain.NoticeWarning, source,
					"Unsupported file type: %s", fileExt(source)))
				logger.Warn("Skipping %s: unsupported type", source)
				continue
			}
			result.Failed++
			result.Notices = append(result.Notices, notice(domain.NoticeError, source,
				"Error loading %s: %v", source, err))
			logger.Warn("Failed to load %s: %v", source, err)
			continue
		}

		if len(docs) == 0 {
			logger.Debug("No content extracted from %s", source)
			continue
		}

		if IsURL(source) {
			result.Notices = append(result.Notices, notice(domain.NoticeSuccess, source,
				"Loaded %d documents from URL (%s): %s", len(docs), mode, source))
		} else {
			result.Notices = append(result.Notices, notice(domain.NoticeSuccess, source,
				"Loaded %d documents from file: %s", len(docs), source))
		}
		logger.Info("Loaded %d documents from %s", len(docs), source)
		result.Documents = append(result.Documents, docs...)
	}

	logger.Info("Loaded %d documents, %d failed", len(result.Documents), result.Failed)
	return result, nil
}

// loadFile dispatches a local file by extension.
func (l *DocumentLoader) loadFile(ctx context.Context, path string) ([]domain.Document, []domain.Notice, error) {
	ext := fileExt(path)
	if l.registry == nil || !l.registry.Supports(ext) {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}

	content, err := l.readFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	raw := &domain.RawDocument{
		URI:     path,
		Content: content,
		Metadata: map[string]any{
			domain.MetaSource: path,
			domain.MetaType:   "file",
		},
	}
	docs, _, err := l.normalise(ctx, raw)
	return docs, nil, err
}

// loadURL fetches a page, using the headless browser when requested and
// falling back to plain HTTP if the browser path fails for any reason.
func (l *DocumentLoader) loadURL(
	ctx context.Context, pageURL string, mode domain.RenderMode,
) ([]domain.Document, []domain.Notice, error) {
	var (
		notices  []domain.Notice
		fetched  *driven.FetchResult
		fallback error
	)

	if mode == domain.RenderJavaScript {
		if l.headless == nil {
			fallback = domain.ErrHeadlessUnavailable
		} else {
			res, err := l.headless.Fetch(ctx, pageURL)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				fallback = err
			} else {
				fetched = res
			}
		}
		if fallback != nil {
			logger.Warn("Headless fetch failed for %s: %v", pageURL, fallback)
			notices = append(notices,
				notice(domain.NoticeWarning, pageURL, "JavaScript rendering failed: %v", fallback),
				notice(domain.NoticeInfo, pageURL, "Falling back to standard HTTP request method..."))
		}
	}

	if fetched == nil {
		if l.web == nil {
			return nil, notices, fmt.Errorf("%w: no web fetcher configured", domain.ErrFetchFailed)
		}
		res, err := l.web.Fetch(ctx, pageURL)
		if err != nil {
			return nil, notices, err
		}
		fetched = res
	}

	meta := map[string]any{
		domain.MetaSource:     pageURL,
		domain.MetaType:       "url",
		domain.MetaStatusCode: fetched.StatusCode,
		domain.MetaMethod:     fetched.Method,
	}
	if fetched.Title != "" {
		meta[domain.MetaTitle] = fetched.Title
	}
	if fallback != nil {
		meta[domain.MetaFallback] = true
		meta[domain.MetaFallbackReason] = fallback.Error()
	}

	raw := &domain.RawDocument{
		URI:      pageURL,
		MIMEType: "text/html",
		Content:  []byte(fetched.HTML),
		Metadata: meta,
	}
	docs, all, err := l.normalise(ctx, raw)
	if err != nil {
		return nil, notices, err
	}

	for _, d := range all {
		if isApp, _ := d.Metadata[domain.MetaIsJSApp].(bool); isApp && fetched.Method == driven.FetchMethodHTTP {
			notices = append(notices, notice(domain.NoticeWarning, pageURL,
				"%s appears to be a JavaScript application. Content may be limited. "+
					"Try enabling JavaScript rendering for better results.", pageURL))
			break
		}
	}
	return docs, notices, nil
}

// normalise runs the registry. It returns the documents that carry text
// and, separately, everything the normaliser produced.
func (l *DocumentLoader) normalise(
	ctx context.Context, raw *domain.RawDocument,
) (kept, all []domain.Document, err error) {
	if l.registry == nil {
		return nil, nil, fmt.Errorf("%w: no normalisers configured", domain.ErrUnsupportedType)
	}
	result, err := l.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	kept = make([]domain.Document, 0, len(result.Documents))
	for _, d := range result.Documents {
		if strings.TrimSpace(d.Content) == "" {
			continue
		}
		kept = append(kept, d)
	}
	return kept, result.Documents, nil
}

func fileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func notice(level domain.NoticeLevel, source, format string, args ...any) domain.Notice {
	return domain.Notice{
		Level:   level,
		Source:  source,
		Message: fmt.Sprintf(format, args...),
	}
}
