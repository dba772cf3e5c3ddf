package session

import (
	"github.com/hyperjump/scribe/internal/highlight"
	"github.com/hyperjump/scribe/internal/identity"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/nav"
	"github.com/hyperjump/scribe/internal/results"
	"github.com/hyperjump/scribe/internal/suggest"
)

// Message types sent by the browser.
const (
	MsgInput        = "input"
	MsgKey          = "key"
	MsgClick        = "click"
	MsgBlur         = "blur"
	MsgSearch       = "search"
	MsgFilter       = "filter"
	MsgClearFilters = "clear_filters"
	MsgRetry        = "retry"
)

// Frame types sent to the browser.
const (
	FrameSuggestions = "suggestions"
	FrameNavigate    = "navigate"
	FrameResults     = "results"
	FrameError       = "error"
)

// VisibleTags is how many tags a result card shows before collapsing the rest.
const VisibleTags = 3

// ClientMessage is one event from the browser.
// A search message may carry the criteria already selected on the page.
type ClientMessage struct {
	Type     string                 `json:"type"`
	Text     string                 `json:"text,omitempty"`
	Key      string                 `json:"key,omitempty"`
	Index    int                    `json:"index,omitempty"`
	Kind     string                 `json:"kind,omitempty"`
	Value    string                 `json:"value,omitempty"`
	Criteria *models.FilterCriteria `json:"criteria,omitempty"`
}

// Candidate is one rendered suggestion.
type Candidate struct {
	ID       string               `json:"id"`
	Title    []highlight.Segment  `json:"title"`
	Author   string               `json:"author"`
	Category string               `json:"category"`
	Score    float64              `json:"score"`
	Tier     models.RelevanceTier `json:"tier"`
	Exact    bool                 `json:"exact"`
}

// SuggestionFrame is the rendered dropdown.
type SuggestionFrame struct {
	State      suggest.State `json:"state"`
	Query      string        `json:"query"`
	Visible    bool          `json:"visible"`
	Selected   int           `json:"selected"`
	Candidates []Candidate   `json:"candidates"`
}

// TagLink is a highlighted tag and the tag view it opens.
type TagLink struct {
	Label []highlight.Segment `json:"label"`
	Path  string              `json:"path"`
}

// ResultCard is one rendered result.
type ResultCard struct {
	ID         string               `json:"id"`
	Title      []highlight.Segment  `json:"title"`
	Author     []highlight.Segment  `json:"author"`
	Category   []highlight.Segment  `json:"category"`
	Image      string               `json:"image,omitempty"`
	Score      float64              `json:"score"`
	Tier       models.RelevanceTier `json:"tier"`
	Exact      bool                 `json:"exact"`
	AllWords   bool                 `json:"allWords"`
	Tags       []TagLink            `json:"tags"`
	MoreTags   int                  `json:"moreTags"`
	DetailPath string               `json:"detailPath"`
	AuthorPath string               `json:"authorPath"`
}

// ResultsFrame is the result view with its visible items rendered as cards.
type ResultsFrame struct {
	results.Snapshot
	Cards []ResultCard `json:"cards"`
}

// ErrorFrame reports a failure the user can act on.
type ErrorFrame struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Home      string `json:"home"`
}

// Frame is one message to the browser. Exactly one payload field is set.
type Frame struct {
	Type        string            `json:"type"`
	Suggestions *SuggestionFrame  `json:"suggestions,omitempty"`
	Navigate    *nav.Target       `json:"navigate,omitempty"`
	Results     *ResultsFrame     `json:"results,omitempty"`
	Error       *ErrorFrame       `json:"error,omitempty"`
}

func renderSuggestions(s suggest.Session) *SuggestionFrame {
	f := &SuggestionFrame{
		State:      s.State,
		Query:      s.Query,
		Visible:    s.Visible(),
		Selected:   s.Selected,
		Candidates: make([]Candidate, 0, len(s.Candidates)),
	}
	for _, it := range s.Candidates {
		f.Candidates = append(f.Candidates, Candidate{
			ID:       it.ID,
			Title:    highlight.Segments(it.Title, s.Query),
			Author:   it.Author,
			Category: it.Category,
			Score:    it.RelevanceScore,
			Tier:     models.TierFor(it.RelevanceScore),
			Exact:    it.ExactPhrase(),
		})
	}
	return f
}

func renderResults(snap results.Snapshot, user *models.Identity) *ResultsFrame {
	f := &ResultsFrame{Snapshot: snap, Cards: make([]ResultCard, 0, len(snap.Items))}
	for _, it := range snap.Items {
		f.Cards = append(f.Cards, NewResultCard(it, snap.Query, user))
	}
	return f
}

// NewResultCard renders it with query terms highlighted. The author link depends on user.
func NewResultCard(it *models.SearchResultItem, query string, user *models.Identity) ResultCard {
	c := ResultCard{
		ID:         it.ID,
		Title:      highlight.Segments(it.Title, query),
		Author:     highlight.Segments(it.Author, query),
		Category:   highlight.Segments(it.Category, query),
		Image:      it.Image,
		Score:      it.RelevanceScore,
		Tier:       models.TierFor(it.RelevanceScore),
		Exact:      it.ExactPhrase(),
		AllWords:   it.MatchDetails != nil && it.MatchDetails.MatchesAllWords,
		DetailPath: nav.Detail(it.ID, nil).Path,
		AuthorPath: identity.AuthorTarget(user, it).Path,
	}
	tags := it.Tags
	if len(tags) > VisibleTags {
		c.MoreTags = len(tags) - VisibleTags
		tags = tags[:VisibleTags]
	}
	c.Tags = make([]TagLink, 0, len(tags))
	for _, t := range tags {
		c.Tags = append(c.Tags, TagLink{Label: highlight.Segments(t, query), Path: nav.Tag(t).Path})
	}
	return c
}
