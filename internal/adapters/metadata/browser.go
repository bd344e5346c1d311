package metadata

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

// BrowserFetcher renders a page in Chrome before reading its metadata, for
// sites that only set their meta tags from script.
type BrowserFetcher struct {
	pool    *BrowserPool
	timeout time.Duration
}

// NewBrowserFetcher creates a fetcher that gives each page timeout to load.
func NewBrowserFetcher(pool *BrowserPool, timeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{pool: pool, timeout: timeout}
}

// Fetch implements usecases.LinkMetadataFetcher.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*domain.LinkMetadata, error) {
	var html, finalURL string
	err := f.pool.WithTab(ctx, func(tabCtx context.Context) error {
		tabCtx, cancel := context.WithTimeout(tabCtx, f.timeout)
		defer cancel()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(rawURL),
			chromedp.WaitReady("head", chromedp.ByQuery),
			chromedp.Location(&finalURL),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	if err != nil {
		log.GlobalWarnCtx(ctx, "browser metadata fetch failed", "url", rawURL, "error", err)
		return nil, err
	}
	if finalURL == "" {
		finalURL = rawURL
	}
	return ParseHTML(finalURL, strings.NewReader(html))
}
