// Package main is the scribe CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hyperjump/scribe/internal/config"
	"github.com/hyperjump/scribe/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/scribe/config.yaml"
	defaultEnvFile    = ".env"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "scribe",
		Usage:   "Blog search front end with live suggestions",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: defaultConfigPath,
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Environment file applied over the config (SCRIBE_* variables)",
				Value: defaultEnvFile,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			backendCommand(),
			searchCommand(),
			suggestCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Fprintf(c.Root().Writer, "scribe version %s\n", version)
			return nil
		},
	}
}

// loadConfig loads config from path. When path is the default and missing, it falls back to
// config.yaml in the current directory, then to built-in defaults. Environment overrides apply last.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path, envFile string) (*config.Config, string, error) {
	resolved := ""
	if _, err := os.Stat(path); err == nil {
		resolved = path
	} else if path != defaultConfigPath {
		return nil, "", fmt.Errorf("config file %s: %w", path, err)
	} else if cwd, cwdErr := os.Getwd(); cwdErr == nil {
		fallback := filepath.Join(cwd, "config.yaml")
		if _, statErr := os.Stat(fallback); statErr == nil {
			resolved = fallback
		}
	}

	var cfg *config.Config
	if resolved != "" {
		loaded, err := config.Load(resolved)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

// setup loads config and builds the long-running service logger.
func setup(c *cli.Command) (*config.Config, string, *zap.Logger, error) {
	cfg, path, err := loadConfig(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Debug = cfg.Debug || c.Bool("debug")
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Info("config loaded", zap.String("config_path", path), zap.Bool("debug", cfg.Debug))
	return cfg, path, logger, nil
}
