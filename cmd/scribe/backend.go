package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hyperjump/scribe/internal/backend"
	"github.com/hyperjump/scribe/internal/config"
	"github.com/hyperjump/scribe/internal/extract"
	"github.com/hyperjump/scribe/internal/keyword"
	"github.com/hyperjump/scribe/internal/storage"
	"github.com/hyperjump/scribe/internal/watcher"
)

// components holds the backend's initialized services.
type components struct {
	storage  storage.Storage
	index    keyword.Index
	importer *backend.Importer
}

func (c *components) Close() {
	if c.storage != nil {
		_ = c.storage.Close()
	}
	if c.index != nil {
		_ = c.index.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Backend.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	index, err := keyword.NewBleveIndex(cfg.Backend.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	c := &components{
		storage:  store,
		index:    index,
		importer: backend.NewImporter(store, index, extract.NewExtractor(), backend.WithLogger(logger)),
	}

	stored, err := store.CountPosts(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	indexed, err := index.DocCount()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to count indexed posts: %w", err)
	}
	if uint64(stored) != indexed {
		n, err := c.importer.Reindex(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
		logger.Info("keyword index rebuilt from storage", zap.Int("posts", n))
	}
	return c, nil
}

func backendCommand() *cli.Command {
	return &cli.Command{
		Name:  "backend",
		Usage: "Run the reference blog backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the search, detail, and post APIs and watch post directories",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-watch", Usage: "Do not watch post directories"},
				},
				Action: runBackend,
			},
			{
				Name:      "import",
				Usage:     "Import post files or directories once",
				ArgsUsage: "<path>...",
				Action:    runImport,
			},
		},
	}
}

func runBackend(ctx context.Context, c *cli.Command) error {
	cfg, path, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	comps, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	var watch backend.WatchService
	if !c.Bool("no-watch") {
		w := watcher.New(comps.importer,
			cfg.Backend.Watch.Directories,
			cfg.Backend.Watch.Extensions,
			cfg.Backend.Watch.RecursiveOrDefault(),
			watcher.WithLogger(logger),
		)
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := w.Start(watchCtx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		w.SyncExistingFiles()
		watch = w
	}

	srv := backend.NewServer(comps.storage, comps.index, comps.importer, cfg, logger, watch, path)
	return runUntilSignal(ctx, srv, logger)
}

func runImport(ctx context.Context, c *cli.Command) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: scribe backend import <path>...")
	}
	cfg, _, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	comps, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	out := c.Root().Writer
	exts := cfg.Backend.Watch.Extensions
	for _, p := range c.Args().Slice() {
		n, err := comps.importer.ImportDirectory(ctx, p, exts)
		if err != nil {
			if fileErr := comps.importer.ImportFile(ctx, p, exts); fileErr != nil {
				return fmt.Errorf("import %s: %w", p, fileErr)
			}
			n = 1
		}
		fmt.Fprintf(out, "Imported %d post(s) from %s\n", n, p)
	}
	return nil
}
