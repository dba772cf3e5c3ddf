package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/scribe/internal/config"
	"github.com/hyperjump/scribe/internal/keyword"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/storage"
	"go.uber.org/zap"
)

const (
	searchLimit     = 50
	titleBoost      = 2.0
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.SearchData)
	s.logger.Debug("search request", zap.String("query", query))
	if query == "" {
		s.respondJSON(w, http.StatusOK, models.SearchResponse{
			Response:       []*models.SearchResultItem{},
			SearchMetadata: &models.SearchMetadata{},
		})
		return
	}

	hits, err := s.index.Search(r.Context(), query, searchLimit, &keyword.SearchOptions{
		TitleBoost:    titleBoost,
		FuzzyFallback: true,
		Fuzziness:     1,
	})
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	normalized := normalizeScores(hits)
	items := make([]*models.SearchResultItem, 0, len(hits))
	top := 0.0
	for _, h := range hits {
		post, err := s.storage.GetPost(r.Context(), h.ID)
		if err != nil {
			// Indexed but no longer stored; the next import or delete will settle it.
			s.logger.Debug("search hit without post", zap.String("id", h.ID), zap.Error(err))
			continue
		}
		score := relevance(normalized[h.ID], h)
		if score > top {
			top = score
		}
		items = append(items, post.Item(score, &models.MatchDetails{
			ExactPhraseMatch: h.ExactPhrase,
			MatchesAllWords:  h.AllWords,
		}))
	}
	sortByScore(items)

	s.respondJSON(w, http.StatusOK, models.SearchResponse{
		Response: items,
		SearchMetadata: &models.SearchMetadata{
			TopScore:     top,
			TotalResults: len(items),
			Query:        query,
		},
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := s.storage.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "post not found")
			return
		}
		s.logger.Error("get post failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.DetailResponse{Blog: post})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	posts, err := s.storage.ListPosts(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list posts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"blogs": posts, "offset": offset, "limit": limit})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var input models.PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := input.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	post := &models.Post{
		ID:       uuid.New().String(),
		AuthorID: input.AuthorID,
		Title:    input.Title,
		Author:   input.Author,
		Category: input.Category,
		Tags:     input.Tags,
		Image:    input.Image,
		Content:  input.Content,
	}
	s.logger.Debug("create post request", zap.String("id", post.ID), zap.String("title", post.Title))
	if err := s.importer.Create(r.Context(), post); err != nil {
		s.logger.Error("create post failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, models.DetailResponse{Blog: post})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete post request", zap.String("id", id))
	if err := s.importer.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "post not found")
			return
		}
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	posts, err := s.storage.ListPostsByTag(r.Context(), tag)
	if err != nil {
		s.logger.Error("list posts by tag failed", zap.String("tag", tag), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]*models.SearchResultItem, len(posts))
	for i, p := range posts {
		items[i] = p.Item(0, nil)
	}
	s.respondJSON(w, http.StatusOK, models.SearchResponse{
		Response:       items,
		SearchMetadata: &models.SearchMetadata{TotalResults: len(items), Query: tag},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	postCount, err := s.storage.CountPosts(r.Context())
	if err != nil {
		s.logger.Error("status: count posts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	indexed, err := s.index.DocCount()
	if err != nil {
		s.logger.Error("status: count indexed posts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"posts":   postCount,
		"indexed": indexed,
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"database_path":    s.config.Backend.DatabasePath,
			"bleve_index_path": s.config.Backend.BleveIndexPath,
			"extensions":       s.config.Backend.Watch.Extensions,
		}
		if diskBytes, err := storage.DiskUsageBytes(s.config.Backend.DatabasePath, s.config.Backend.BleveIndexPath); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.config == nil {
		return
	}
	s.watchConfigMu.Lock()
	defer s.watchConfigMu.Unlock()
	s.config.Backend.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
