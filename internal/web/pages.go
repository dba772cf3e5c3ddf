package web

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/hyperjump/scribe/internal/highlight"
	"github.com/hyperjump/scribe/internal/identity"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/nav"
	"github.com/hyperjump/scribe/internal/results"
	"github.com/hyperjump/scribe/internal/session"
)

var funcs = template.FuncMap{
	"highlight": highlight.HTML,
}

type page struct {
	Title string
	Query string
	User  *models.Identity
}

type tagLink struct {
	Label template.HTML
	Path  string
}

type card struct {
	Item       *models.SearchResultItem
	Title      template.HTML
	Author     template.HTML
	Category   template.HTML
	Tier       models.RelevanceTier
	Exact      bool
	AllWords   bool
	Tags       []tagLink
	MoreTags   int
	DetailPath string
	AuthorPath string
}

func tagLinks(tags []string, query string) []tagLink {
	out := make([]tagLink, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagLink{Label: highlight.HTML(t, query), Path: nav.Tag(t).Path})
	}
	return out
}

func newCard(it *models.SearchResultItem, query string, user *models.Identity) card {
	c := card{
		Item:       it,
		Title:      highlight.HTML(it.Title, query),
		Author:     highlight.HTML(it.Author, query),
		Category:   highlight.HTML(it.Category, query),
		Tier:       models.TierFor(it.RelevanceScore),
		Exact:      it.ExactPhrase(),
		AllWords:   it.MatchDetails != nil && it.MatchDetails.MatchesAllWords,
		DetailPath: nav.Detail(it.ID, nil).Path,
		AuthorPath: identity.AuthorTarget(user, it).Path,
	}
	tags := it.Tags
	if len(tags) > session.VisibleTags {
		c.MoreTags = len(tags) - session.VisibleTags
		tags = tags[:session.VisibleTags]
	}
	c.Tags = tagLinks(tags, query)
	return c
}

func cards(items []*models.SearchResultItem, query string, user *models.Identity) []card {
	out := make([]card, 0, len(items))
	for _, it := range items {
		out = append(out, newCard(it, query, user))
	}
	return out
}

type resultsPage struct {
	page
	Snapshot  results.Snapshot
	Cards     []card
	ClearPath string
}

type errorPage struct {
	page
	Message   string
	RetryPath string
}

type detailPage struct {
	page
	Post       *models.Post
	AuthorPath string
	Tags       []tagLink
}

type registerPage struct {
	page
	Message string
	Next    string
}

type authorPage struct {
	page
	Author string
	Self   bool
	Cards  []card
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string, retry bool) {
	data := errorPage{
		page:    page{Title: "Something went wrong", User: identity.FromContext(r.Context())},
		Message: message,
	}
	if retry {
		data.RetryPath = r.URL.RequestURI()
	}
	s.render(w, status, "error", data)
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	u, err := url.Parse(next)
	if err != nil || next == "" || u.IsAbs() || u.Host != "" || len(next) > 1 && next[:2] == "//" {
		return "/"
	}
	return next
}
