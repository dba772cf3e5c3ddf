// Package keyword indexes blog posts for full-text search.
package keyword

import (
	"context"

	"github.com/hyperjump/scribe/internal/models"
)

// SearchOptions tunes a keyword search. Nil means defaults.
type SearchOptions struct {
	// TitleBoost multiplies matches in the title. Values <= 1 disable the boost.
	TitleBoost float64
	// FuzzyFallback retries with fuzzy term matching when the exact search finds nothing.
	FuzzyFallback bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2).
	Fuzziness int
}

// Hit is a single keyword search result.
type Hit struct {
	ID    string
	Score float64
	// ExactPhrase is set when the whole query occurs as a phrase in the title or content.
	ExactPhrase bool
	// AllWords is set when every query term occurs somewhere in the post.
	AllWords bool
}

// Index defines post indexing and search.
type Index interface {
	Index(ctx context.Context, post *models.Post) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}
