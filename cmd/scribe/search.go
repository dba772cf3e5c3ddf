package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	printer "github.com/hyperjump/scribe/internal/cli"
	"github.com/hyperjump/scribe/internal/config"
	"github.com/hyperjump/scribe/internal/export"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/remote"
	"github.com/hyperjump/scribe/internal/results"
	"github.com/hyperjump/scribe/pkg/utils"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "output",
		Usage: "output format: text (human-readable), compact (one result per line), or json (parseable)",
		Value: string(printer.OutputText),
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a committed search against the remote endpoint and print the visible results",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.StringFlag{Name: "category", Usage: "Only show this category", Value: models.All},
			&cli.StringFlag{Name: "author", Usage: "Only show this author", Value: models.All},
			&cli.StringFlag{Name: "sort", Usage: "relevance or recent", Value: string(models.SortRelevance)},
			&cli.FloatFlag{Name: "min-score", Usage: "Minimum relevance score"},
			&cli.StringFlag{Name: "export", Usage: "Also write the visible results to this xlsx file"},
		},
		Action: runSearch,
	}
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Print the live suggestions for a partial query",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.IntFlag{Name: "limit", Usage: "Maximum suggestions (default from config)"},
		},
		Action: runSuggest,
	}
}

// buildQuery joins positional args so both `scribe search a b` and `scribe search "a b"` work.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// commandClient loads config for a one-shot command and returns a remote client with a quiet logger.
func commandClient(c *cli.Command) (*config.Config, *remote.Client, error) {
	cfg, _, err := loadConfig(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug || c.Bool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, remote.NewClient(cfg.Remote, remote.WithLogger(logger)), nil
}

func runSearch(ctx context.Context, c *cli.Command) error {
	query := buildQuery(c.Args().Slice())
	if query == "" {
		return fmt.Errorf("usage: scribe search [flags] <query>")
	}
	format, err := printer.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	criteria := models.FilterCriteria{
		Category: c.String("category"),
		Author:   c.String("author"),
		SortBy:   models.SortMode(c.String("sort")),
		MinScore: c.Float("min-score"),
	}
	if err := criteria.Validate(); err != nil {
		return err
	}
	cfg, client, err := commandClient(c)
	if err != nil {
		return err
	}

	view := results.NewView()
	token := view.Begin(query)
	entry, err := results.Load(ctx, results.NewCache(1, cfg.Results.CacheTTL()), client, query)
	if err != nil {
		view.Fail(token, err)
	} else {
		view.Resolve(token, entry)
		if err := view.SetCriteria(criteria); err != nil {
			return err
		}
	}
	snap := view.Snapshot()

	if err := printer.NewPrinter(c.Root().Writer, format, cfg.Results.SnippetLength).Results(snap); err != nil {
		return err
	}
	if view.Err() != nil {
		return view.Err()
	}
	if path := c.String("export"); path != "" {
		if err := export.SaveXLSX(path, query, snap.Items); err != nil {
			return err
		}
		if format != printer.OutputJSON {
			fmt.Fprintf(c.Root().Writer, "Exported %d results to %s\n", len(snap.Items), path)
		}
	}
	return nil
}

func runSuggest(ctx context.Context, c *cli.Command) error {
	text := buildQuery(c.Args().Slice())
	format, err := printer.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	cfg, client, err := commandClient(c)
	if err != nil {
		return err
	}
	p := printer.NewPrinter(c.Root().Writer, format, cfg.Results.SnippetLength)
	if text == "" {
		return p.Suggestions(text, nil)
	}
	limit := int(c.Int("limit"))
	if limit <= 0 {
		limit = cfg.Suggest.Limit
	}
	items, err := client.Suggest(ctx, text, limit)
	if err != nil {
		return err
	}
	return p.Suggestions(text, items)
}
