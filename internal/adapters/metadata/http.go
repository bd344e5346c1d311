package metadata

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

// DefaultMaxBody caps how much of a page is read when looking for metadata.
const DefaultMaxBody = 2 * humanize.MiByte

const userAgent = "Mozilla/5.0 (compatible; bubbleview/1.0; +link-preview)"

// HTTPFetcher reads link metadata from the server-rendered HTML of a page.
type HTTPFetcher struct {
	client  *http.Client
	maxBody int64
}

// NewHTTPFetcher creates a fetcher that reads at most maxBody bytes per
// page. maxBody <= 0 means DefaultMaxBody.
func NewHTTPFetcher(maxBody int64, timeout time.Duration) *HTTPFetcher {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		maxBody: maxBody,
	}
}

// Fetch implements usecases.LinkMetadataFetcher. A link straight to an
// image comes back with the image as its own preview.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*domain.LinkMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,image/*;q=0.8,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("link metadata: %s returned %d", rawURL, resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "image/") {
		return &domain.LinkMetadata{PreviewImageURL: resp.Request.URL.String()}, nil
	}

	log.GlobalDebugCtx(ctx, "parsing link metadata", "url", rawURL, "limit", humanize.IBytes(uint64(f.maxBody)))
	return ParseHTML(resp.Request.URL.String(), io.LimitReader(resp.Body, f.maxBody))
}
