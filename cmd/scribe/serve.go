package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hyperjump/scribe/internal/remote"
	"github.com/hyperjump/scribe/internal/web"
)

// stopper is a server that can be shut down gracefully.
type stopper interface {
	Start() error
	Stop(ctx context.Context) error
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search front end",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "remote", Usage: "Remote search endpoint base URL (overrides config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (overrides config)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, _, logger, err := setup(c)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if u := c.String("remote"); u != "" {
				cfg.Remote.BaseURL = u
			}
			if p := int(c.Int("port")); p > 0 {
				cfg.Server.Port = p
			}

			client := remote.NewClient(cfg.Remote, remote.WithLogger(logger))
			srv, err := web.NewServer(cfg, client, logger)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return runUntilSignal(ctx, srv, logger)
		},
	}
}

// runUntilSignal starts srv and shuts it down on SIGINT, SIGTERM, or ctx cancellation.
func runUntilSignal(ctx context.Context, srv stopper, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
