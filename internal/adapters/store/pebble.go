// Package store persists bubbles in an embedded Pebble database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/google/uuid"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

const keyPrefix = "bubble:"

// PebbleStore keeps one JSON record per bubble under "bubble:<slug>".
type PebbleStore struct {
	db *pebble.DB
}

// Option adjusts the Pebble options a store is opened with.
type Option func(*pebble.Options)

// InMemory keeps the database in memory. Used by tests and dry runs.
func InMemory() Option {
	return func(o *pebble.Options) {
		o.FS = vfs.NewMem()
	}
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*PebbleStore, error) {
	options := &pebble.Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.FS == nil {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
	}
	db, err := pebble.Open(path, options)
	if err != nil {
		return nil, fmt.Errorf("open bubble store: %w", err)
	}
	log.GlobalInfo("bubble store opened", "path", path)
	return &PebbleStore{db: db}, nil
}

// Close closes the database.
func (s *PebbleStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes bubble, assigning a slug when it has none, and returns the slug.
func (s *PebbleStore) Save(ctx context.Context, bubble *domain.Bubble) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	slug := bubble.Slug
	if slug == "" {
		slug = uuid.NewString()
	}
	if !domain.ValidSlug(slug) {
		return "", domain.ErrInvalidSlug
	}

	rec := toRecord(bubble)
	rec.Slug = slug
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode bubble %s: %w", slug, err)
	}
	if err := s.db.Set(key(slug), data, pebble.Sync); err != nil {
		return "", fmt.Errorf("save bubble %s: %w", slug, err)
	}
	log.GlobalDebugCtx(ctx, "bubble saved", "slug", slug, "bytes", len(data))
	return slug, nil
}

// Fetch reads the bubble stored under slug.
func (s *PebbleStore) Fetch(ctx context.Context, slug string) (*domain.Bubble, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, closer, err := s.db.Get(key(slug))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.ErrBubbleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read bubble %s: %w", slug, err)
	}
	defer closer.Close()

	var rec record
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("decode bubble %s: %w", slug, err)
	}
	return rec.toDomain(), nil
}

// Delete removes slug. Deleting a missing slug is not an error.
func (s *PebbleStore) Delete(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Delete(key(slug), pebble.Sync)
}

// Each calls fn for every stored bubble in slug order and stops at the
// first error fn returns.
func (s *PebbleStore) Each(ctx context.Context, fn func(*domain.Bubble) error) error {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: prefixEnd(keyPrefix),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for ok := it.First(); ok; ok = it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var rec record
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return fmt.Errorf("decode %s: %w", it.Key(), err)
		}
		if err := fn(rec.toDomain()); err != nil {
			return err
		}
	}
	return it.Error()
}

func key(slug string) []byte {
	return []byte(keyPrefix + slug)
}

func prefixEnd(prefix string) []byte {
	end := []byte(prefix)
	end[len(end)-1]++
	return end
}
