// Package remote is the client for the blog search and detail endpoints.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/scribe/internal/config"
	"github.com/hyperjump/scribe/internal/models"
)

// ErrUnavailable wraps transport failures and non-success responses.
var ErrUnavailable = errors.New("remote endpoint unavailable")

// ErrNotFound is returned by Detail when the endpoint has no such post.
var ErrNotFound = errors.New("post not found")

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

// Client talks to the remote search endpoint. It is safe for concurrent use.
type Client struct {
	baseURL    string
	searchPath string
	detailPath string
	http       *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimiter replaces the outbound rate limiter. A nil limiter disables limiting.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a client from the remote config section.
func NewClient(cfg config.RemoteConfig, opts ...Option) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		searchPath: cfg.SearchPath,
		detailPath: cfg.DetailPath,
		http:       &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search posts query to the search endpoint. A body that does not decode, or that lacks
// the result list, yields an empty response rather than an error.
func (c *Client) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	body, err := json.Marshal(models.SearchRequest{SearchData: query})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, c.searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("Malformed search response", zap.String("query", query), zap.Error(err))
		return &models.SearchResponse{Response: []*models.SearchResultItem{}}, nil
	}
	if resp.Response == nil {
		resp.Response = []*models.SearchResultItem{}
	}
	return &resp, nil
}

// Suggest runs a search and keeps at most limit items in server order.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]*models.SearchResultItem, error) {
	resp, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	items := resp.Response
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Detail fetches the full post with the given id.
func (c *Client) Detail(ctx context.Context, id string) (*models.Post, error) {
	data, err := c.do(ctx, http.MethodGet, c.detailPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var resp models.DetailResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.Blog == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return resp.Blog, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("Failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned status %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return data, nil
}
