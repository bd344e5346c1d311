package metadata

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// probeLimit is enough for the header of every supported format.
const probeLimit = 64 << 10

// ImageSize is the pixel size and format of an image.
type ImageSize struct {
	Width  int
	Height int
	Format string
}

// ProbeImage reads just enough of r to learn the image's size. It knows
// PNG, JPEG, GIF, BMP and WebP.
func ProbeImage(r io.Reader) (ImageSize, error) {
	cfg, format, err := image.DecodeConfig(io.LimitReader(r, probeLimit))
	if err != nil {
		return ImageSize{}, err
	}
	return ImageSize{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Prober fetches remote images to measure them.
type Prober struct {
	client *http.Client
}

// NewProber creates a Prober with the given request timeout.
func NewProber(timeout time.Duration) *Prober {
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Probe implements usecases.ImageProber.
func (p *Prober) Probe(ctx context.Context, rawURL string) (width, height int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", probeLimit-1))

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, 0, fmt.Errorf("probe %s: status %d", rawURL, resp.StatusCode)
	}

	size, err := ProbeImage(resp.Body)
	if err != nil {
		return 0, 0, err
	}
	return size.Width, size.Height, nil
}
