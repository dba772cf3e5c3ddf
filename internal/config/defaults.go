package config

import "strings"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = "http://localhost:8081"
	}
	cfg.Remote.BaseURL = strings.TrimRight(cfg.Remote.BaseURL, "/")
	if cfg.Remote.SearchPath == "" {
		cfg.Remote.SearchPath = "/api/search"
	}
	if cfg.Remote.DetailPath == "" {
		cfg.Remote.DetailPath = "/api/blogs"
	}
	if cfg.Remote.TimeoutSeconds == 0 {
		cfg.Remote.TimeoutSeconds = 10
	}
	if cfg.Remote.RatePerSecond == 0 {
		cfg.Remote.RatePerSecond = 20
	}
	if cfg.Remote.Burst == 0 {
		cfg.Remote.Burst = 10
	}
	if cfg.Suggest.DebounceMS == 0 {
		cfg.Suggest.DebounceMS = 300
	}
	if cfg.Suggest.Limit == 0 {
		cfg.Suggest.Limit = 5
	}
	if cfg.Results.CacheSize == 0 {
		cfg.Results.CacheSize = 64
	}
	if cfg.Results.CacheTTLSeconds == 0 {
		cfg.Results.CacheTTLSeconds = 300
	}
	if cfg.Results.SnippetLength == 0 {
		cfg.Results.SnippetLength = 200
	}
	if cfg.Backend.Host == "" {
		cfg.Backend.Host = "localhost"
	}
	if cfg.Backend.Port == 0 {
		cfg.Backend.Port = 8081
	}
	if cfg.Backend.DatabasePath == "" {
		cfg.Backend.DatabasePath = "/usr/local/var/scribe/data/db/posts.db"
	}
	if cfg.Backend.BleveIndexPath == "" {
		cfg.Backend.BleveIndexPath = "/usr/local/var/scribe/data/indices/bleve"
	}
	if cfg.Backend.Watch.Extensions == nil {
		cfg.Backend.Watch.Extensions = []string{".md", ".markdown", ".txt", ".pdf"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Backend.Watch.Directories) > 0 && cfg.Backend.Watch.Recursive == nil {
		t := true
		cfg.Backend.Watch.Recursive = &t
	}
}
