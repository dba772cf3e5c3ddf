// Package extract loads blog posts from files: markdown with YAML front matter, plain text, and PDF.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/scribe/internal/models"
)

// Fallbacks for imported posts that do not name an author or category.
const (
	DefaultAuthor   = "Anonymous"
	DefaultCategory = "Uncategorized"
)

// Extractor turns post files into posts.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns the post it describes.
// The post has no ID; callers derive one from the path.
// Returns an error if the file cannot be read or holds no text.
func (e *Extractor) Extract(path string) (*models.Post, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	post, err := e.ExtractBytes(content, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if post.CreatedAt.IsZero() {
		if info, statErr := os.Stat(path); statErr == nil {
			post.CreatedAt = info.ModTime()
		}
	}
	return post, nil
}

// ExtractBytes builds a post from content. name is the file name; its extension picks the format
// and its stem is the title when the content names none.
func (e *Extractor) ExtractBytes(content []byte, name string) (*models.Post, error) {
	var (
		post *models.Post
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		post, err = parseMarkdown(content)
	case ".pdf":
		post, err = parsePDF(content)
	default:
		post, err = parsePlain(content)
	}
	if err != nil {
		return nil, err
	}
	post.Content = strings.TrimSpace(post.Content)
	if post.Content == "" {
		return nil, fmt.Errorf("%s: no text content", name)
	}
	if post.Title == "" {
		post.Title = titleFromName(name)
	}
	if post.Author == "" {
		post.Author = DefaultAuthor
	}
	if post.Category == "" {
		post.Category = DefaultCategory
	}
	return post, nil
}

// titleFromName turns "my_first-post.md" into "my first post".
func titleFromName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.Join(strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}), " ")
}
