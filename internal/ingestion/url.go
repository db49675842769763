package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the posting page cannot be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text can be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// RenderFunc renders a page in a browser and returns its HTML.
type RenderFunc func(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error)

// URLOptions configures FromURL.
type URLOptions struct {
	// UseBrowser enables the headless browser fallback for pages whose
	// server-rendered HTML is too thin.
	UseBrowser    bool
	RenderTimeout time.Duration
	Fetch         *fetch.Options
	Render        RenderFunc
	Logger        *zap.Logger
}

// FromURL fetches a job posting, extracts its main text with board-specific
// selectors and cleans it.
func FromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	render := opts.Render
	if render == nil {
		render = fetch.Render
	}

	platform := fetch.DetectPlatform(urlStr)
	logger = logger.With(zap.String("url", urlStr), zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched job posting", zap.Int("bytes", len(result.HTML)))

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		logger.Info("content too short, rendering in browser",
			zap.Int("chars", len(text)),
			zap.Int("min_chars", fetch.MinContentLength))

		rendered, renderErr := render(ctx, urlStr, opts.RenderTimeout, logger)
		switch {
		case renderErr != nil:
			logger.Warn("browser rendering failed, keeping HTTP content", zap.Error(renderErr))
		default:
			if browserText, err := fetch.ExtractMainText(rendered, contentSelectors, noiseSelectors...); err != nil {
				logger.Warn("browser content extraction failed", zap.Error(err))
			} else {
				text = browserText
			}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: page has no readable text", ErrContentExtractionFailed)
	}
	logger.Debug("extracted job description", zap.Int("chars", len(cleaned)))

	metadata := NewMetadata(cleaned, urlStr)
	metadata.Platform = string(platform)
	return cleaned, metadata, nil
}
