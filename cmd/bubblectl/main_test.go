package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"bubbleview/internal/adapters/store"
	"bubbleview/internal/content"
	"bubbleview/internal/domain"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify_PrintsKindPerName(t *testing.T) {
	// Act
	out, err := execute(t, "", "classify", "report.PDF", "song.mp3", "notes")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"report.PDF", "PDF", "song.mp3", "AUDIO", "notes", "GENERIC"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestClassify_MimeHint_UsedWithoutExtension(t *testing.T) {
	out, err := execute(t, "", "classify", "--hint", "image/png", "upload")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "IMAGE") {
		t.Errorf("expected IMAGE, got:\n%s", out)
	}
}

func TestRender_FromStdin_PrintsItemsAndPreview(t *testing.T) {
	// Arrange
	input := `{
		"content": "Intro $ middle $",
		"grammar": "delimiter",
		"attachments": [
			{"id": "a1", "name": "clip.mp4", "url": "https://cdn.example/clip.mp4"},
			{"id": "a2", "kind": "LINK", "url": "https://x.com/someone/status/1"}
		]
	}`

	// Act
	out, err := execute(t, input, "render", "--file", "-")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"text    Intro", "button", "clip.mp4 [VIDEO] *", "text    middle", "preview VIDEO Open Video"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRender_JSONForSelectedLink(t *testing.T) {
	input := `{"content": "<file-token id=\"l\"></file-token>", "attachments": [{"id": "l", "kind": "link", "url": "https://x.com/a/status/1"}]}`

	out, err := execute(t, input, "render", "-f", "-", "--selected", "l", "--json")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"siteLabel": "X"`) || !strings.Contains(out, `"actionLabel": "Visit Tweet"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRender_NoSource_ReturnsError(t *testing.T) {
	_, err := execute(t, "", "render")

	if err == nil {
		t.Fatal("expected an error without --file or --store")
	}
}

func TestMigrate_UnknownGrammar_ReturnsError(t *testing.T) {
	_, err := execute(t, "", "migrate", "--store", t.TempDir(), "--from", "emoji")

	if err == nil || !strings.Contains(err.Error(), "--from") {
		t.Fatalf("expected --from error, got %v", err)
	}
}

func TestMigrateStore_SequentialToID_RewritesMatchingBubbles(t *testing.T) {
	// Arrange
	ctx := context.Background()
	st, err := store.Open("bubbles", store.InMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	files := []domain.Attachment{
		{ID: "p", Kind: domain.KindFile, Name: "a.png"},
		{ID: "q", Kind: domain.KindFile, Name: "b.pdf"},
	}
	mustSave(t, st, &domain.Bubble{Slug: "old", Grammar: "sequential", ContentText: "see <file-token></file-token> and <file-token></file-token>", Attachments: files})
	mustSave(t, st, &domain.Bubble{Slug: "new", Grammar: "id", ContentText: `hi <file-token id="p"></file-token>`, Attachments: files[:1]})
	var out bytes.Buffer

	// Act
	n, err := migrateStore(ctx, st, content.GrammarSequential, content.GrammarIDTag, false, &out)

	// Assert
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if n != 1 {
		t.Errorf("migrated %d, want 1", n)
	}
	got, err := st.Fetch(ctx, "old")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Grammar != "id" {
		t.Errorf("Grammar = %q, want id", got.Grammar)
	}
	if !strings.Contains(got.ContentText, `<file-token id="p"></file-token>`) || !strings.Contains(got.ContentText, `<file-token id="q"></file-token>`) {
		t.Errorf("unexpected content: %s", got.ContentText)
	}
	if !strings.Contains(out.String(), "old") {
		t.Errorf("expected migrated slug in output: %s", out.String())
	}
}

func TestMigrateStore_DryRun_LeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open("bubbles", store.InMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	mustSave(t, st, &domain.Bubble{Slug: "old", Grammar: "sequential", ContentText: "x <file-token></file-token>",
		Attachments: []domain.Attachment{{ID: "p", Kind: domain.KindFile, Name: "a.png"}}})

	n, err := migrateStore(ctx, st, content.GrammarSequential, content.GrammarIDTag, true, &bytes.Buffer{})

	if err != nil || n != 1 {
		t.Fatalf("n = %d, err = %v", n, err)
	}
	got, _ := st.Fetch(ctx, "old")
	if got.Grammar != "sequential" {
		t.Errorf("dry run wrote the bubble: grammar %q", got.Grammar)
	}
}

func mustSave(t *testing.T, st *store.PebbleStore, b *domain.Bubble) {
	t.Helper()
	if _, err := st.Save(context.Background(), b); err != nil {
		t.Fatalf("save %s: %v", b.Slug, err)
	}
}
