package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hyperjump/scribe/internal/extract"
	"github.com/hyperjump/scribe/internal/fileid"
	"github.com/hyperjump/scribe/internal/keyword"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/storage"
	"go.uber.org/zap"
)

// Importer keeps storage and the keyword index in step for created, imported, and removed posts.
type Importer struct {
	storage   storage.Storage
	index     keyword.Index
	extractor *extract.Extractor
	logger    *zap.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets a logger for debug output (file imported, post deleted, etc.).
func WithLogger(l *zap.Logger) ImporterOption {
	return func(im *Importer) { im.logger = l }
}

// NewImporter creates an importer. extractor may be nil; when nil, a default extractor is used.
func NewImporter(store storage.Storage, index keyword.Index, extractor *extract.Extractor, opts ...ImporterOption) *Importer {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	im := &Importer{
		storage:   store,
		index:     index,
		extractor: extractor,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Create stores a new post and indexes it.
func (im *Importer) Create(ctx context.Context, post *models.Post) error {
	if err := im.storage.CreatePost(ctx, post); err != nil {
		return fmt.Errorf("failed to store post: %w", err)
	}
	if err := im.index.Index(ctx, post); err != nil {
		return fmt.Errorf("failed to index post: %w", err)
	}
	return nil
}

// ImportFile reads the post file at path and stores it under an ID derived from the path, so
// re-importing updates the same post. If allowedExts is non-empty, the file's extension must be in it.
// An unchanged file is only re-added to the keyword index.
func (im *Importer) ImportFile(ctx context.Context, path string, allowedExts []string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	if len(allowedExts) > 0 && !extensionAllowed(filepath.Ext(absPath), allowedExts) {
		return fmt.Errorf("extension %q not in allowed list", filepath.Ext(absPath))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}

	post, err := im.extractor.Extract(absPath)
	if err != nil {
		return fmt.Errorf("extract post: %w", err)
	}
	post.ID = fileid.PostID(absPath)
	post.Source = absPath

	if stored, getErr := im.storage.GetPost(ctx, post.ID); getErr == nil && samePost(stored, post) {
		im.logger.Debug("importer skipping unchanged file", zap.String("path", absPath))
		return im.index.Index(ctx, stored)
	}
	if err := im.storage.UpsertPost(ctx, post); err != nil {
		return fmt.Errorf("failed to store post: %w", err)
	}
	if err := im.index.Index(ctx, post); err != nil {
		return fmt.Errorf("failed to index post: %w", err)
	}
	im.logger.Debug("importer file imported", zap.String("path", absPath), zap.String("id", post.ID))
	return nil
}

func samePost(a, b *models.Post) bool {
	return a.Source == b.Source && a.Title == b.Title && a.Content == b.Content &&
		a.Author == b.Author && a.AuthorID == b.AuthorID && a.Category == b.Category &&
		a.Image == b.Image && slices.Equal(a.Tags, b.Tags)
}

// ImportDirectory walks dir recursively and imports each regular file whose extension is in
// allowedExts (all files when empty). Files that fail to import are logged and skipped.
// Returns the number of files imported.
func (im *Importer) ImportDirectory(ctx context.Context, dir string, allowedExts []string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	n := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || (len(allowedExts) > 0 && !extensionAllowed(filepath.Ext(path), allowedExts)) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if importErr := im.ImportFile(ctx, path, allowedExts); importErr != nil {
			im.logger.Warn("import failed", zap.String("path", path), zap.Error(importErr))
			return nil
		}
		n++
		return nil
	})
	return n, err
}

// RemoveFile deletes the post imported from path. A path that was never imported is not an error.
func (im *Importer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	err = im.Delete(ctx, fileid.PostID(absPath))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Delete removes a post from the keyword index and storage.
func (im *Importer) Delete(ctx context.Context, id string) error {
	im.logger.Debug("importer deleting post", zap.String("id", id))
	if err := im.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from keyword index: %w", err)
	}
	if err := im.storage.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// Reindex rebuilds the keyword index from storage, for an index opened empty over an existing database.
func (im *Importer) Reindex(ctx context.Context) (int, error) {
	const page = 200
	n := 0
	for offset := 0; ; offset += page {
		posts, err := im.storage.ListPosts(ctx, offset, page)
		if err != nil {
			return n, fmt.Errorf("failed to list posts: %w", err)
		}
		for _, p := range posts {
			if err := im.index.Index(ctx, p); err != nil {
				return n, fmt.Errorf("failed to index post %s: %w", p.ID, err)
			}
			n++
		}
		if len(posts) < page {
			return n, nil
		}
	}
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
