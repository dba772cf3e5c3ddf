package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/scribe/internal/identity"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/nav"
	"github.com/hyperjump/scribe/internal/remote"
	"github.com/hyperjump/scribe/internal/results"
)

const searchFailed = "Failed to fetch search results. Please try again."

// criteriaFromQuery builds criteria from the filter parameters present in v.
func criteriaFromQuery(v url.Values) (models.FilterCriteria, error) {
	c := models.DefaultCriteria()
	for _, kind := range []models.FilterKind{models.FilterCategory, models.FilterAuthor, models.FilterSortBy, models.FilterMinScore} {
		value := v.Get(string(kind))
		if value == "" {
			continue
		}
		next, err := c.With(kind, value)
		if err != nil {
			return c, err
		}
		c = next
	}
	return c, nil
}

func clearPath(query string) string {
	return nav.Results(query).Path
}

func (s *Server) currentUser(r *http.Request) *models.Identity {
	if id := identity.FromContext(r.Context()); id != nil {
		return id
	}
	id, _ := identity.FromRequest(r)
	return id
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home", page{Title: "Search", User: s.currentUser(r)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	crit, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error(), false)
		return
	}
	s.logger.Debug("search request", zap.String("query", query), zap.Any("criteria", crit))
	entry, err := results.Load(r.Context(), s.cache, s.remote, query)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		s.renderError(w, r, http.StatusBadGateway, searchFailed, true)
		return
	}
	s.renderResults(w, r, query, entry, crit)
}

func (s *Server) renderResults(w http.ResponseWriter, r *http.Request, query string, entry *results.Entry, crit models.FilterCriteria) {
	user := s.currentUser(r)
	snap := results.Project(entry, crit, results.Snapshot{})
	s.render(w, http.StatusOK, "results", resultsPage{
		page:      page{Title: query, Query: query, User: user},
		Snapshot:  snap,
		Cards:     cards(snap.Items, query, user),
		ClearPath: clearPath(query),
	})
}

func (s *Server) handleResultsAPI(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	crit, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := results.Load(r.Context(), s.cache, s.remote, query)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]any{"error": searchFailed, "retryable": true})
		return
	}
	s.respondJSON(w, http.StatusOK, results.Project(entry, crit, results.Snapshot{}))
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := s.remote.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, "Post not found.", false)
			return
		}
		s.logger.Warn("detail failed", zap.String("id", id), zap.Error(err))
		s.renderError(w, r, http.StatusBadGateway, "Failed to load the post. Please try again.", true)
		return
	}
	user := s.currentUser(r)
	item := post.Item(0, nil)
	s.render(w, http.StatusOK, "detail", detailPage{
		page:       page{Title: post.Title, User: user},
		Post:       post,
		AuthorPath: identity.AuthorTarget(user, item).Path,
		Tags:       tagLinks(post.Tags, ""),
	})
}

// postsBy searches for name and keeps the posts written by authorID.
func (s *Server) postsBy(r *http.Request, authorID, name string) ([]*models.SearchResultItem, error) {
	if name == "" {
		return nil, nil
	}
	entry, err := results.Load(r.Context(), s.cache, s.remote, name)
	if err != nil {
		return nil, err
	}
	var out []*models.SearchResultItem
	for _, it := range entry.Items {
		if it.AuthorID == authorID {
			out = append(out, it)
		}
	}
	results.Sort(out, models.SortRecent)
	return out, nil
}

func (s *Server) handleAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := r.URL.Query().Get("author")
	user := s.currentUser(r)
	if user.Valid() && user.ID == id {
		http.Redirect(w, r, nav.Resolve(nav.Target{View: nav.ViewProfile}).Path, http.StatusSeeOther)
		return
	}
	items, err := s.postsBy(r, id, name)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, searchFailed, true)
		return
	}
	if name == "" {
		name = "Author"
	}
	s.render(w, http.StatusOK, "author", authorPage{
		page:   page{Title: name, User: user},
		Author: name,
		Cards:  cards(items, "", user),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)
	items, err := s.postsBy(r, user.ID, user.Username)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, searchFailed, true)
		return
	}
	s.render(w, http.StatusOK, "author", authorPage{
		page:   page{Title: user.Username, User: user},
		Author: user.Username,
		Self:   true,
		Cards:  cards(items, "", user),
	})
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	entry, err := results.Load(r.Context(), s.cache, s.remote, tag)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, searchFailed, true)
		return
	}
	var tagged []*models.SearchResultItem
	for _, it := range entry.Items {
		for _, t := range it.Tags {
			if strings.EqualFold(t, tag) {
				tagged = append(tagged, it)
				break
			}
		}
	}
	resp := &models.SearchResponse{Response: tagged}
	s.renderResults(w, r, tag, results.NewEntry(tag, resp, time.Now()), models.DefaultCriteria())
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register", registerPage{
		page: page{Title: "Register"},
		Next: safeNext(r.URL.Query().Get("next")),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	next := safeNext(r.PostFormValue("next"))
	id, err := identity.New(r.PostFormValue("username"), r.PostFormValue("email"))
	if err != nil {
		s.render(w, http.StatusBadRequest, "register", registerPage{
			page:    page{Title: "Register"},
			Message: "Username is required.",
			Next:    next,
		})
		return
	}
	if err := identity.SetCookie(w, id); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("registered", zap.String("user", id.Username))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "cached_searches": s.cache.Len()})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
