package metadata

import (
	"context"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

// Fetcher is the shape shared by every metadata source in this package.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.LinkMetadata, error)
}

// Cache stores metadata by URL.
type Cache interface {
	Get(key string) (*domain.LinkMetadata, bool)
	Set(key string, value *domain.LinkMetadata)
}

// Fallback tries Primary first and asks Secondary only when Primary fails
// or finds no title.
type Fallback struct {
	Primary   Fetcher
	Secondary Fetcher
}

// Fetch implements Fetcher.
func (f Fallback) Fetch(ctx context.Context, rawURL string) (*domain.LinkMetadata, error) {
	meta, err := f.Primary.Fetch(ctx, rawURL)
	if err == nil && meta.Title != "" || f.Secondary == nil {
		return meta, err
	}

	log.GlobalDebugCtx(ctx, "falling back to rendered page", "url", rawURL)
	second, err2 := f.Secondary.Fetch(ctx, rawURL)
	if err2 != nil {
		if err == nil {
			return meta, nil
		}
		return nil, err2
	}
	return second, nil
}

// Cached remembers successful lookups.
type Cached struct {
	next  Fetcher
	cache Cache
}

// NewCached wraps next with cache.
func NewCached(next Fetcher, cache Cache) *Cached {
	return &Cached{next: next, cache: cache}
}

// Fetch implements Fetcher.
func (c *Cached) Fetch(ctx context.Context, rawURL string) (*domain.LinkMetadata, error) {
	if meta, ok := c.cache.Get(rawURL); ok {
		return meta, nil
	}
	meta, err := c.next.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	c.cache.Set(rawURL, meta)
	return meta, nil
}
