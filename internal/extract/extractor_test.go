package extract

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtractBytes_markdownFrontMatter(t *testing.T) {
	e := NewExtractor()
	content := []byte(`---
title: Quantum Basics
author: Carol
author_id: u-3
category: Science
tags: [physics, " quantum ", ""]
date: 2024-03-01T10:00:00Z
---
Entanglement explained.
`)
	got, err := e.ExtractBytes(content, "quantum.md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got.Title != "Quantum Basics" || got.Author != "Carol" || got.AuthorID != "u-3" || got.Category != "Science" {
		t.Errorf("front matter not applied: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "physics" || got.Tags[1] != "quantum" {
		t.Errorf("tags = %q", got.Tags)
	}
	if got.Content != "Entanglement explained." {
		t.Errorf("content = %q", got.Content)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created = %v", got.CreatedAt)
	}
}

func TestExtractBytes_markdownHeading(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("# Hello World\n\nFirst post body."), "hello.md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got.Title != "Hello World" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Content != "First post body." {
		t.Errorf("content = %q", got.Content)
	}
	if got.Author != DefaultAuthor || got.Category != DefaultCategory {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestExtractBytes_markdownUnclosedFence(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("---\ntitle: nope\nbody without closing fence"), "draft_notes.md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got.Title != "draft notes" {
		t.Errorf("title = %q, want name-derived title", got.Title)
	}
}

func TestExtractBytes_markdownBadYAML(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("---\ntags: [unclosed\n---\nbody"), "bad.md"); err == nil {
		t.Fatal("expected front matter error")
	}
}

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Hello world\nLine 2"), "note.txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got.Title != "Hello world" || got.Content != "Line 2" {
		t.Errorf("got %+v", got)
	}
}

func TestExtractBytes_plainSingleLine(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("only one line"), "my-note.txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got.Title != "my note" || got.Content != "only one line" {
		t.Errorf("got %+v", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("hello\x80world"), "x.txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got.Content != "hello\uFFFDworld" {
		t.Errorf("got %q", got.Content)
	}
}

func TestExtractBytes_empty(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("  \n "), "empty.txt"); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestExtractBytes_invalidPDF(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a pdf"), "broken.pdf"); err == nil {
		t.Fatal("expected error for invalid PDF")
	}
}

func TestExtract_file(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	if err := os.WriteFile(path, []byte("# Title\n\nBody"), 0600); err != nil {
		t.Fatal(err)
	}
	e := NewExtractor()
	got, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Title != "Title" {
		t.Errorf("title = %q", got.Title)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created time should fall back to the file mtime")
	}
}

func TestExtract_nonexistent(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
