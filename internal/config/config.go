// Package config provides configuration loading and structs for the scribe front-end and backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Remote  RemoteConfig  `yaml:"remote"`
	Suggest SuggestConfig `yaml:"suggest"`
	Results ResultsConfig `yaml:"results"`
	Backend BackendConfig `yaml:"backend"`
}

// ServerConfig holds front-end HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RemoteConfig describes the remote search and detail endpoints.
type RemoteConfig struct {
	BaseURL        string  `yaml:"base_url"`
	SearchPath     string  `yaml:"search_path"`
	DetailPath     string  `yaml:"detail_path"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
}

// Timeout returns the per-request timeout.
func (r *RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// SuggestConfig holds live suggestion settings.
type SuggestConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
	Limit      int `yaml:"limit"`
}

// Debounce returns the quiet interval before a suggestion query is sent.
func (s *SuggestConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// ResultsConfig holds the result ranking cache settings.
type ResultsConfig struct {
	CacheSize       int `yaml:"cache_size"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	SnippetLength   int `yaml:"snippet_length"`
}

// CacheTTL returns how long a committed search stays cached.
func (r *ResultsConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// BackendConfig holds settings for the reference blog backend.
type BackendConfig struct {
	Host           string      `yaml:"host"`
	Port           int         `yaml:"port"`
	DatabasePath   string      `yaml:"database_path"`
	BleveIndexPath string      `yaml:"bleve_index_path"`
	Watch          WatchConfig `yaml:"watch"`
}

// WatchConfig holds posts directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Backend.DatabasePath = expandPath(cfg.Backend.DatabasePath, configDir)
	cfg.Backend.BleveIndexPath = expandPath(cfg.Backend.BleveIndexPath, configDir)
	for i := range cfg.Backend.Watch.Directories {
		cfg.Backend.Watch.Directories[i] = expandPath(cfg.Backend.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Environment variables that override file values.
const (
	EnvRemoteURL  = "SCRIBE_REMOTE_URL"
	EnvServerHost = "SCRIBE_SERVER_HOST"
	EnvServerPort = "SCRIBE_SERVER_PORT"
	EnvDebug      = "SCRIBE_DEBUG"
)

// ApplyEnv loads envFile (when it exists) into the process environment and applies
// SCRIBE_* overrides to cfg. A missing env file is not an error.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}
	if v := os.Getenv(EnvRemoteURL); v != "" {
		cfg.Remote.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvServerHost); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvServerPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
