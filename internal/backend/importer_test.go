package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/scribe/internal/fileid"
	"github.com/hyperjump/scribe/internal/keyword"
	"github.com/hyperjump/scribe/internal/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestImporter_ImportFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := filepath.Join(f.dir, "posts", "hello.md")
	writeFile(t, path, "---\ntitle: Hello Scribe\ncategory: Meta\ntags: [intro]\n---\nFirst words.\n")

	if err := f.importer.ImportFile(ctx, path, []string{".md"}); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	post, err := f.store.GetPost(ctx, fileid.PostID(path))
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if post.Title != "Hello Scribe" || post.Category != "Meta" || post.Source != path {
		t.Errorf("post = %+v", post)
	}
	hits, err := f.index.Search(ctx, "scribe", 10, nil)
	if err != nil || len(hits) != 1 {
		t.Errorf("hits = %v, %v", hits, err)
	}

	writeFile(t, path, "---\ntitle: Hello Again\n---\nRewritten.\n")
	if err := f.importer.ImportFile(ctx, path, nil); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if n, _ := f.store.CountPosts(ctx); n != 1 {
		t.Errorf("re-import should update in place, have %d posts", n)
	}
	post, _ = f.store.GetPost(ctx, fileid.PostID(path))
	if post.Title != "Hello Again" {
		t.Errorf("title after re-import = %q", post.Title)
	}
}

func TestImporter_ImportFile_DisallowedExtension(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "notes.txt")
	writeFile(t, path, "Title\nbody")
	if err := f.importer.ImportFile(context.Background(), path, []string{".md"}); err == nil {
		t.Fatal("expected error for disallowed extension")
	}
}

func TestImporter_ImportFile_UnchangedRepopulatesIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := filepath.Join(f.dir, "a.txt")
	writeFile(t, path, "Orchids\nCare for orchids weekly.")
	if err := f.importer.ImportFile(ctx, path, nil); err != nil {
		t.Fatal(err)
	}

	fresh, err := keyword.NewMemoryIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer fresh.Close()
	im := NewImporter(f.store, fresh, nil)
	if err := im.ImportFile(ctx, path, nil); err != nil {
		t.Fatal(err)
	}
	if n, _ := fresh.DocCount(); n != 1 {
		t.Errorf("unchanged file should still be indexed, DocCount = %d", n)
	}
}

func TestImporter_ImportDirectory(t *testing.T) {
	f := newFixture(t)
	root := filepath.Join(f.dir, "posts")
	writeFile(t, filepath.Join(root, "a.md"), "# A\n\nalpha")
	writeFile(t, filepath.Join(root, "nested", "b.txt"), "B\nbravo")
	writeFile(t, filepath.Join(root, "skip.png"), "binary")
	writeFile(t, filepath.Join(root, "empty.md"), "   ")

	n, err := f.importer.ImportDirectory(context.Background(), root, []string{".md", ".txt"})
	if err != nil {
		t.Fatalf("ImportDirectory: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d files, want 2", n)
	}
}

func TestImporter_ImportDirectory_NotDir(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "file.md")
	writeFile(t, path, "x")
	if _, err := f.importer.ImportDirectory(context.Background(), path, nil); err == nil {
		t.Fatal("expected error for a file path")
	}
}

func TestImporter_RemoveFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := filepath.Join(f.dir, "gone.md")
	writeFile(t, path, "# Gone\n\nsoon")
	if err := f.importer.ImportFile(ctx, path, nil); err != nil {
		t.Fatal(err)
	}
	if err := f.importer.RemoveFile(ctx, path); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if _, err := f.store.GetPost(ctx, fileid.PostID(path)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("post still stored: %v", err)
	}
	if err := f.importer.RemoveFile(ctx, path); err != nil {
		t.Errorf("removing an unknown file should not fail: %v", err)
	}
}

func TestImporter_Reindex(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	fresh, err := keyword.NewMemoryIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer fresh.Close()
	n, err := NewImporter(f.store, fresh, nil).Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 3 {
		t.Errorf("reindexed %d, want 3", n)
	}
	if c, _ := fresh.DocCount(); c != 3 {
		t.Errorf("DocCount = %d, want 3", c)
	}
}
