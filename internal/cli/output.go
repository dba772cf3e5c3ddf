// Package cli renders search results and suggestions for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/scribe/internal/highlight"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/results"
)

// OutputFormat is the format for result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// Printer writes results to a terminal or any writer. Styling follows what w supports,
// so plain writers get plain text.
type Printer struct {
	w          io.Writer
	format     OutputFormat
	snippetLen int

	title lipgloss.Style
	meta  lipgloss.Style
	match lipgloss.Style
	rule  lipgloss.Style
	tiers map[models.RelevanceTier]lipgloss.Style
}

// NewPrinter returns a printer for w. snippetLen bounds the description shown per result in text output.
func NewPrinter(w io.Writer, format OutputFormat, snippetLen int) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:          w,
		format:     format,
		snippetLen: snippetLen,
		title:      r.NewStyle().Bold(true),
		meta:       r.NewStyle().Faint(true),
		match:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		rule:       r.NewStyle().Foreground(lipgloss.Color("8")),
		tiers: map[models.RelevanceTier]lipgloss.Style{
			models.TierHigh:       r.NewStyle().Foreground(lipgloss.Color("10")),
			models.TierMediumHigh: r.NewStyle().Foreground(lipgloss.Color("14")),
			models.TierMedium:     r.NewStyle().Foreground(lipgloss.Color("11")),
			models.TierLow:        r.NewStyle().Foreground(lipgloss.Color("8")),
		},
	}
}

// Results writes the visible results of snap.
func (p *Printer) Results(snap results.Snapshot) error {
	switch p.format {
	case OutputJSON:
		return p.json(snap)
	case OutputCompact:
		for i, it := range snap.Items {
			p.compactLine(i+1, snap.Query, it)
		}
		return nil
	}

	if snap.Error != "" {
		fmt.Fprintf(p.w, "Search failed: %s\n", snap.Error)
		return nil
	}
	fmt.Fprintf(p.w, "\n%d of %d results for %q", len(snap.Items), snap.Total, snap.Query)
	if snap.Metadata.TopScore > 0 {
		fmt.Fprintf(p.w, " (top score %.1f)", snap.Metadata.TopScore)
	}
	fmt.Fprintln(p.w)
	if band := snap.ActiveBand; band != "" && band != results.Bands[0].Label {
		fmt.Fprintln(p.w, p.meta.Render("Showing "+band))
	}
	fmt.Fprintln(p.w)
	if len(snap.Items) == 0 {
		fmt.Fprintln(p.w, "No results found")
		return nil
	}
	for i, it := range snap.Items {
		p.block(i+1, snap.Query, it)
	}
	return nil
}

// Suggestions writes the suggestion candidates for query.
func (p *Printer) Suggestions(query string, items []*models.SearchResultItem) error {
	if p.format == OutputJSON {
		return p.json(map[string]interface{}{"query": query, "suggestions": items})
	}
	if len(items) == 0 {
		fmt.Fprintln(p.w, "No suggestions")
		return nil
	}
	for i, it := range items {
		p.compactLine(i+1, query, it)
	}
	return nil
}

func (p *Printer) json(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) compactLine(rank int, query string, it *models.SearchResultItem) {
	tier := models.TierFor(it.RelevanceScore)
	fmt.Fprintf(p.w, "%d. %s %s %s\n", rank,
		p.tiers[tier].Render(fmt.Sprintf("[%5.1f]", it.RelevanceScore)),
		highlight.Terminal(it.Title, query, p.match),
		p.meta.Render("· "+it.Author+" · "+it.Category))
}

func (p *Printer) block(rank int, query string, it *models.SearchResultItem) {
	tier := models.TierFor(it.RelevanceScore)
	fmt.Fprintln(p.w, p.rule.Render(strings.Repeat("─", 57)))
	label := fmt.Sprintf("%.1f %s", it.RelevanceScore, tier)
	if it.ExactPhrase() {
		label += " · exact phrase"
	}
	fmt.Fprintf(p.w, "%d. %s  %s\n", rank, p.title.Render(highlight.Terminal(it.Title, query, p.match)), p.tiers[tier].Render(label))
	fmt.Fprintf(p.w, "%s\n", p.meta.Render(fmt.Sprintf("%s · %s · %s", it.Author, it.Category, it.ID)))
	if len(it.Tags) > 0 {
		fmt.Fprintf(p.w, "%s\n", p.meta.Render("#"+strings.Join(it.Tags, " #")))
	}
	if it.Description != "" {
		fmt.Fprintf(p.w, "\n%s\n", highlight.Terminal(highlight.Snippet(it.Description, p.snippetLen), query, p.match))
	}
	fmt.Fprintln(p.w)
}
