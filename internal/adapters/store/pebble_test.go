package store_test

import (
	"context"
	"errors"
	"testing"

	"bubbleview/internal/adapters/store"
	"bubbleview/internal/domain"
)

func openStore(t *testing.T) *store.PebbleStore {
	t.Helper()
	s, err := store.Open("bubbles", store.InMemory())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPebbleStore_SaveAndFetch_RoundTrips(t *testing.T) {
	// Arrange
	s := openStore(t)
	size := int64(2048)
	bubble := &domain.Bubble{
		ContentText: `Hi <file-token id="f1"></file-token>`,
		Grammar:     "id",
		CreatedBy:   "+15550100",
		Attachments: []domain.Attachment{
			{ID: "f1", Kind: domain.KindFile, Name: "a.pdf", SizeBytes: &size, DownloadURL: "https://cdn/a.pdf"},
			{ID: "l1", Kind: domain.KindLink, SourceURL: "https://x.com", Link: &domain.LinkMetadata{Title: "X"}},
		},
	}

	// Act
	slug, err := s.Save(context.Background(), bubble)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Fetch(context.Background(), slug)

	// Assert
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Slug != slug || got.ContentText != bubble.ContentText || got.Grammar != "id" {
		t.Errorf("bubble: got %+v", got)
	}
	if len(got.Attachments) != 2 {
		t.Fatalf("attachments: got %d, want 2", len(got.Attachments))
	}
	if got.Attachments[0].SizeBytes == nil || *got.Attachments[0].SizeBytes != size {
		t.Errorf("size lost: %+v", got.Attachments[0])
	}
	if got.Attachments[1].Link == nil || got.Attachments[1].Link.Title != "X" {
		t.Errorf("link metadata lost: %+v", got.Attachments[1])
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestPebbleStore_Save_KeepsGivenSlug(t *testing.T) {
	s := openStore(t)

	slug, err := s.Save(context.Background(), &domain.Bubble{Slug: "fixed", ContentText: "x"})

	if err != nil || slug != "fixed" {
		t.Errorf("got %q, %v", slug, err)
	}
}

func TestPebbleStore_Save_InvalidSlug(t *testing.T) {
	s := openStore(t)

	_, err := s.Save(context.Background(), &domain.Bubble{Slug: "a/b"})

	if !errors.Is(err, domain.ErrInvalidSlug) {
		t.Errorf("expected ErrInvalidSlug, got %v", err)
	}
}

func TestPebbleStore_Fetch_Missing(t *testing.T) {
	s := openStore(t)

	_, err := s.Fetch(context.Background(), "nope")

	if !errors.Is(err, domain.ErrBubbleNotFound) {
		t.Errorf("expected ErrBubbleNotFound, got %v", err)
	}
}

func TestPebbleStore_Delete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	slug, _ := s.Save(ctx, &domain.Bubble{ContentText: "x"})

	if err := s.Delete(ctx, slug); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.Fetch(ctx, slug); !errors.Is(err, domain.ErrBubbleNotFound) {
		t.Errorf("expected ErrBubbleNotFound after delete, got %v", err)
	}
}

func TestPebbleStore_Each_VisitsAllInSlugOrder(t *testing.T) {
	// Arrange
	s := openStore(t)
	ctx := context.Background()
	for _, slug := range []string{"b", "a", "c"} {
		if _, err := s.Save(ctx, &domain.Bubble{Slug: slug, ContentText: slug}); err != nil {
			t.Fatalf("save %s: %v", slug, err)
		}
	}

	// Act
	var seen []string
	err := s.Each(ctx, func(b *domain.Bubble) error {
		seen = append(seen, b.Slug)
		return nil
	})

	// Assert
	if err != nil {
		t.Fatalf("each: %v", err)
	}
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Errorf("got %v, want [a b c]", seen)
	}
}

func TestPebbleStore_Each_StopsOnError(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	s.Save(ctx, &domain.Bubble{Slug: "a"})
	s.Save(ctx, &domain.Bubble{Slug: "b"})
	stop := errors.New("stop")

	calls := 0
	err := s.Each(ctx, func(*domain.Bubble) error {
		calls++
		return stop
	})

	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("got err %v after %d calls", err, calls)
	}
}

func TestPebbleStore_CanceledContext(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Save(ctx, &domain.Bubble{ContentText: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
