// Package backend provides the reference blog backend: post search, detail, creation, and tag listing
// over HTTP, plus watch-directory management for imported posts.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/scribe/internal/config"
	"github.com/hyperjump/scribe/internal/keyword"
	"github.com/hyperjump/scribe/internal/storage"
	"github.com/hyperjump/scribe/pkg/utils"
	"go.uber.org/zap"
)

// WatchService allows listing, adding, and removing watched post directories at runtime.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the blog backend.
type Server struct {
	storage  storage.Storage
	index    keyword.Index
	importer *Importer
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server

	// watch and configPath are optional; when set, watch directories can be changed and persisted.
	watch         WatchService
	configPath    string
	watchConfigMu sync.Mutex
}

// NewServer creates a server with the given dependencies. watch may be nil.
func NewServer(
	store storage.Storage,
	index keyword.Index,
	importer *Importer,
	cfg *config.Config,
	logger *zap.Logger,
	watch WatchService,
	configPath string,
) *Server {
	return &Server{
		storage:    store,
		index:      index,
		importer:   importer,
		config:     cfg,
		logger:     utils.OrNop(logger),
		watch:      watch,
		configPath: configPath,
	}
}

// Handler returns the backend router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/search", s.handleSearch)
	r.Get("/api/blogs", s.handleListPosts)
	r.Post("/api/blogs", s.handleCreatePost)
	r.Get("/api/blogs/{id}", s.handleGetPost)
	r.Delete("/api/blogs/{id}", s.handleDeletePost)
	r.Get("/api/tags/{tag}", s.handleTag)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/watch/directories", s.handleWatchDirectoriesList)
	r.Post("/api/watch/directories", s.handleWatchDirectoriesAdd)
	r.Delete("/api/watch/directories", s.handleWatchDirectoriesRemove)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Backend.Host, s.config.Backend.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting backend", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
