package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/scribe/internal/models"
)

func seed(t *testing.T, idx Index) {
	t.Helper()
	ctx := context.Background()
	posts := []*models.Post{
		{ID: "p1", Title: "Distributed Systems Primer", Content: "Consensus and replication in distributed systems.", Tags: []string{"systems"}, Category: "Technology", Author: "Alice"},
		{ID: "p2", Title: "Gardening Notes", Content: "Tomatoes need sun. Systems of irrigation help.", Tags: []string{"garden"}, Category: "Lifestyle", Author: "Bob"},
		{ID: "p3", Title: "Quantum Physics", Content: "Entanglement explained for readers.", Tags: []string{"physics"}, Category: "Science", Author: "Carol"},
	}
	for _, p := range posts {
		if err := idx.Index(ctx, p); err != nil {
			t.Fatalf("Index %s: %v", p.ID, err)
		}
	}
}

func TestBuildMapping(t *testing.T) {
	im := buildMapping()
	if err := im.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if im.DefaultType != "post" {
		t.Errorf("DefaultType = %q, want post", im.DefaultType)
	}
	for _, f := range searchableFields {
		fm := im.DefaultMapping.Properties[f].Fields
		if len(fm) != 1 || fm[0].Analyzer != standard.Name {
			t.Errorf("field %s: mapping %+v, want standard text field", f, fm)
		}
	}
	if id := im.DefaultMapping.Properties["id"].Fields; len(id) != 1 || id[0].Analyzer != "keyword" {
		t.Errorf("id mapping = %+v, want keyword", id)
	}
}

func TestBleveIndex_IndexAndSearch(t *testing.T) {
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer idx.Close()
	seed(t, idx)

	n, err := idx.DocCount()
	if err != nil || n != 3 {
		t.Fatalf("DocCount = %d, %v; want 3", n, err)
	}

	hits, err := idx.Search(context.Background(), "distributed systems", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) < 2 {
		t.Fatalf("expected at least 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "p1" {
		t.Errorf("top hit = %s, want p1", hits[0].ID)
	}
	if !hits[0].ExactPhrase || !hits[0].AllWords {
		t.Errorf("p1 flags = phrase %v all %v, want both true", hits[0].ExactPhrase, hits[0].AllWords)
	}
	for _, h := range hits {
		if h.ID == "p2" && (h.ExactPhrase || h.AllWords) {
			t.Errorf("p2 should match neither phrase nor all words: %+v", h)
		}
	}
}

func TestBleveIndex_FieldsSearched(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer idx.Close()
	seed(t, idx)

	for _, q := range []string{"carol", "science", "physics"} {
		hits, err := idx.Search(context.Background(), q, 10, nil)
		if err != nil {
			t.Fatalf("Search %q: %v", q, err)
		}
		if len(hits) != 1 || hits[0].ID != "p3" {
			t.Errorf("Search %q = %v, want only p3", q, hits)
		}
	}
}

func TestBleveIndex_EmptyQuery(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer idx.Close()
	seed(t, idx)

	hits, err := idx.Search(context.Background(), "   ", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestBleveIndex_FuzzyFallback(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer idx.Close()
	seed(t, idx)

	hits, err := idx.Search(context.Background(), "entanglment", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("exact search should miss the typo, got %d hits", len(hits))
	}

	hits, err = idx.Search(context.Background(), "entanglment", 10, &SearchOptions{FuzzyFallback: true, Fuzziness: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "p3" {
		t.Errorf("fuzzy hits = %v, want p3", hits)
	}
}

func TestBleveIndex_Limit(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer idx.Close()
	seed(t, idx)

	hits, err := idx.Search(context.Background(), "systems", 1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("len = %d, want 1", len(hits))
	}
}

func TestBleveIndex_Delete(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer idx.Close()
	seed(t, idx)

	if err := idx.Delete(context.Background(), "p3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	hits, err := idx.Search(context.Background(), "quantum", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("deleted post still found: %v", hits)
	}
}

func TestBleveIndex_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	seed(t, idx)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err = NewBleveIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()
	n, err := idx.DocCount()
	if err != nil || n != 3 {
		t.Errorf("DocCount after reopen = %d, %v; want 3", n, err)
	}
}
