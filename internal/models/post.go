// Package models defines core data structures for posts, search results, filter criteria, and facets.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Post is a full blog post as stored by the backend and returned by the detail endpoint.
type Post struct {
	ID        string    `json:"_id" yaml:"id"`
	AuthorID  string    `json:"id" yaml:"author_id"`
	Title     string    `json:"title" yaml:"title"`
	Author    string    `json:"author" yaml:"author"`
	Category  string    `json:"category" yaml:"category"`
	Tags      []string  `json:"tags" yaml:"tags"`
	Image     string    `json:"image,omitempty" yaml:"image"`
	Content   string    `json:"description" yaml:"-"`
	Source    string    `json:"-" yaml:"-"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// PostInput is the input for creating a post through the backend API.
type PostInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"description"`
	Author   string   `json:"author"`
	AuthorID string   `json:"id"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// ErrInvalidPost is returned when a post input is missing required fields.
var ErrInvalidPost = errors.New("invalid post")

// Validate trims the input and checks required fields.
func (p *PostInput) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	p.Author = strings.TrimSpace(p.Author)
	p.Category = strings.TrimSpace(p.Category)
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	case p.Content == "":
		return fmt.Errorf("%w: description is required", ErrInvalidPost)
	case p.Author == "":
		return fmt.Errorf("%w: author is required", ErrInvalidPost)
	case p.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidPost)
	}
	tags := p.Tags[:0]
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags
	return nil
}

// Item converts a post into a search result item with the given score and match details.
func (p *Post) Item(score float64, details *MatchDetails) *SearchResultItem {
	return &SearchResultItem{
		ID:             p.ID,
		AuthorID:       p.AuthorID,
		Title:          p.Title,
		Author:         p.Author,
		Category:       p.Category,
		Tags:           append([]string(nil), p.Tags...),
		Image:          p.Image,
		Description:    p.Content,
		RelevanceScore: score,
		MatchDetails:   details,
		CreatedAt:      p.CreatedAt,
	}
}
