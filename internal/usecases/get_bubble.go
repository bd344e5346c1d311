package usecases

import (
	"context"
	"errors"
	"strings"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

// BubbleCache defines the interface for caching fetched bubbles.
type BubbleCache interface {
	Get(slug string) (*domain.Bubble, bool)
	Set(slug string, bubble *domain.Bubble)
}

// BubbleSource fetches a bubble by its share slug.
type BubbleSource interface {
	Fetch(ctx context.Context, slug string) (*domain.Bubble, error)
}

// ChainSource tries each source in order and moves on only when a source
// does not know the slug.
type ChainSource []BubbleSource

// Fetch implements BubbleSource.
func (c ChainSource) Fetch(ctx context.Context, slug string) (*domain.Bubble, error) {
	for _, src := range c {
		bubble, err := src.Fetch(ctx, slug)
		if errors.Is(err, domain.ErrBubbleNotFound) {
			continue
		}
		return bubble, err
	}
	return nil, domain.ErrBubbleNotFound
}

// GetBubbleUseCase handles retrieving bubbles with cache-first strategy.
type GetBubbleUseCase struct {
	cache  BubbleCache
	source BubbleSource
}

// NewGetBubbleUseCase creates a new GetBubbleUseCase.
func NewGetBubbleUseCase(cache BubbleCache, source BubbleSource) *GetBubbleUseCase {
	return &GetBubbleUseCase{
		cache:  cache,
		source: source,
	}
}

// Execute returns the bubble for slug, checking the cache before the source.
func (uc *GetBubbleUseCase) Execute(ctx context.Context, slug string) (*domain.Bubble, error) {
	slug = strings.TrimSpace(slug)
	if !domain.ValidSlug(slug) {
		return nil, domain.ErrInvalidSlug
	}

	if bubble, found := uc.cache.Get(slug); found {
		log.GlobalDebugCtx(ctx, "cache hit", "slug", slug)
		return bubble, nil
	}

	log.GlobalDebugCtx(ctx, "cache miss, fetching", "slug", slug)

	bubble, err := uc.source.Fetch(ctx, slug)
	if err != nil {
		return nil, err
	}
	if bubble.Slug == "" {
		bubble.Slug = slug
	}

	uc.cache.Set(slug, bubble)

	return bubble, nil
}
