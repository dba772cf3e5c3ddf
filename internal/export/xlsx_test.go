package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/scribe/internal/models"
)

func sample() []*models.SearchResultItem {
	return []*models.SearchResultItem{
		{ID: "p1", Title: "Quantum Basics", Author: "Carol", Category: "Science", Tags: []string{"physics", "intro"},
			RelevanceScore: 82.5, MatchDetails: &models.MatchDetails{ExactPhraseMatch: true},
			CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p2", Title: "Garden Log", Author: "Bob", Category: "Lifestyle", RelevanceScore: 12},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "quantum", sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []string{"1", "Quantum Basics", "Carol", "Science", "physics, intro", "82.5", "high", "TRUE", "2024-03-01", "p1"}, rows[1])
	assert.Equal(t, "Garden Log", rows[2][1])
	assert.Equal(t, "low", rows[2][6])
	assert.Equal(t, "FALSE", rows[2][7])

	q, err := f.GetCellValue("Query", "A1")
	require.NoError(t, err)
	assert.Equal(t, "quantum", q)
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "nothing", nil))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, SaveXLSX(path, "quantum", sample()))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), SheetName)
}
