package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/scribe/internal/models"
)

var fence = []byte("---")

type frontMatter struct {
	Title    string    `yaml:"title"`
	Author   string    `yaml:"author"`
	AuthorID string    `yaml:"author_id"`
	Category string    `yaml:"category"`
	Tags     []string  `yaml:"tags"`
	Image    string    `yaml:"image"`
	Date     time.Time `yaml:"date"`
}

// parseMarkdown reads an optional YAML front matter block fenced by "---" lines.
// Without a title in the front matter, a leading "# heading" becomes the title.
func parseMarkdown(content []byte) (*models.Post, error) {
	text := []byte(extractPlain(content))
	var fm frontMatter
	body := text
	if head, rest, ok := splitFrontMatter(text); ok {
		if err := yaml.Unmarshal(head, &fm); err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
		body = rest
	}

	bodyText := strings.TrimSpace(string(body))
	if fm.Title == "" {
		if first, rest, _ := strings.Cut(bodyText, "\n"); strings.HasPrefix(first, "# ") {
			fm.Title = strings.TrimSpace(strings.TrimPrefix(first, "# "))
			bodyText = rest
		}
	}

	tags := make([]string, 0, len(fm.Tags))
	for _, t := range fm.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return &models.Post{
		Title:     strings.TrimSpace(fm.Title),
		Author:    strings.TrimSpace(fm.Author),
		AuthorID:  strings.TrimSpace(fm.AuthorID),
		Category:  strings.TrimSpace(fm.Category),
		Tags:      tags,
		Image:     fm.Image,
		Content:   bodyText,
		CreatedAt: fm.Date,
	}, nil
}

func splitFrontMatter(text []byte) (head, body []byte, ok bool) {
	text = bytes.TrimPrefix(text, []byte("\ufeff"))
	if !bytes.HasPrefix(text, fence) {
		return nil, text, false
	}
	first, rest, found := bytes.Cut(text, []byte("\n"))
	if !found || len(bytes.TrimSpace(first)) != len(fence) {
		return nil, text, false
	}
	for off := 0; off < len(rest); {
		line := rest[off:]
		end := bytes.IndexByte(line, '\n')
		if end < 0 {
			end = len(line)
		}
		if bytes.Equal(bytes.TrimSpace(line[:end]), fence) {
			next := off + end + 1
			if next > len(rest) {
				next = len(rest)
			}
			return rest[:off], rest[next:], true
		}
		off += end + 1
	}
	return nil, text, false
}
