package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/results"
)

func snapshot() results.Snapshot {
	items := []*models.SearchResultItem{
		{ID: "p1", Title: "Quantum Basics", Author: "Carol", Category: "Science", Tags: []string{"physics"},
			Description: "An introduction to quantum ideas.", RelevanceScore: 82,
			MatchDetails: &models.MatchDetails{ExactPhraseMatch: true}},
		{ID: "p2", Title: "Garden Log", Author: "Bob", Category: "Lifestyle", RelevanceScore: 12},
	}
	return results.Snapshot{
		Query:    "quantum",
		Items:    items,
		Total:    5,
		Metadata: models.SearchMetadata{TopScore: 82, TotalResults: 5},
		Criteria: models.DefaultCriteria(),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{" JSON ", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPrinter_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputText, 10).Results(snapshot()))
	out := buf.String()
	assert.Contains(t, out, `2 of 5 results for "quantum" (top score 82.0)`)
	assert.Contains(t, out, "1. Quantum Basics")
	assert.Contains(t, out, "exact phrase")
	assert.Contains(t, out, "Carol · Science · p1")
	assert.Contains(t, out, "#physics")
	assert.Contains(t, out, "An introdu...")
	assert.Contains(t, out, "2. Garden Log")
}

func TestPrinter_TextEmptyAndError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputText, 0).Results(results.Snapshot{Query: "zzz"}))
	assert.Contains(t, buf.String(), "No results found")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, OutputText, 0).Results(results.Snapshot{Query: "zzz", Error: "remote unavailable"}))
	assert.Contains(t, buf.String(), "Search failed: remote unavailable")
}

func TestPrinter_Compact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputCompact, 0).Results(snapshot()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1. [ 82.0] Quantum Basics · Carol · Science", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2. [ 12.0] Garden Log"))
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, OutputJSON, 0).Results(snapshot()))
	var out results.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "quantum", out.Query)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "p1", out.Items[0].ID)
}

func TestPrinter_Suggestions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, OutputText, 0)
	require.NoError(t, p.Suggestions("quan", snapshot().Items[:1]))
	assert.Equal(t, "1. [ 82.0] Quantum Basics · Carol · Science\n", buf.String())

	buf.Reset()
	require.NoError(t, p.Suggestions("zzz", nil))
	assert.Equal(t, "No suggestions\n", buf.String())
}
