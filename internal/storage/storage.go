// Package storage persists blog posts for the reference backend.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/scribe/internal/models"
)

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("post not found")

// Storage defines post persistence operations.
type Storage interface {
	CreatePost(ctx context.Context, post *models.Post) error
	// UpsertPost inserts post or replaces the post with the same ID.
	UpsertPost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// GetPostBySource returns the post imported from the file at source.
	GetPostBySource(ctx context.Context, source string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, offset, limit int) ([]*models.Post, error)
	ListPostsByTag(ctx context.Context, tag string) ([]*models.Post, error)
	CountPosts(ctx context.Context) (int64, error)

	Close() error
}
