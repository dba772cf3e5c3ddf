// Package web serves the search front end: pages, live suggestions over websocket and a JSON
// result API.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/scribe/internal/config"
	"github.com/hyperjump/scribe/internal/identity"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/results"
	"github.com/hyperjump/scribe/internal/session"
	"github.com/hyperjump/scribe/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Remote is the blog endpoint the front end depends on.
type Remote interface {
	session.Remote
	Detail(ctx context.Context, id string) (*models.Post, error)
}

// Server is the front-end HTTP server.
type Server struct {
	cfg    *config.Config
	remote Remote
	cache  *results.Cache
	pages  *template.Template
	logger *zap.Logger
	server *http.Server
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a front-end server. The result cache is shared by every session.
func NewServer(cfg *config.Config, remote Remote, logger *zap.Logger) (*Server, error) {
	logger = utils.OrNop(logger)
	pages, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		remote: remote,
		cache:  results.NewCache(cfg.Results.CacheSize, cfg.Results.CacheTTL()),
		pages:  pages,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/health", s.handleHealth)
	// Websocket connections are long lived and must not be wrapped by the timeout middleware.
	r.Get("/ws/suggest", s.handleSuggestSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger)
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.Compress(5))

		r.Get("/", s.handleHome)
		r.Get("/register", s.handleRegisterForm)
		r.Post("/register", s.handleRegister)
		r.Get("/api/v1/results", s.handleResultsAPI)

		r.Group(func(r chi.Router) {
			r.Use(identity.Require)
			r.Get("/search", s.handleSearch)
			r.Get("/blogs/{id}", s.handleDetail)
			r.Get("/authors/{id}", s.handleAuthor)
			r.Get("/profile", s.handleProfile)
			r.Get("/tags/{tag}", s.handleTag)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting front end", zap.String("addr", addr), zap.String("remote", s.cfg.Remote.BaseURL))
	return s.server.ListenAndServe()
}

// Stop closes live sessions and gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
