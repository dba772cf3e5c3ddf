// Package export writes visible search results to xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/scribe/internal/models"
)

// SheetName is the worksheet holding the result rows.
const SheetName = "Results"

var header = []interface{}{"Rank", "Title", "Author", "Category", "Tags", "Relevance", "Tier", "Exact Phrase", "Created", "ID"}

// WriteXLSX writes items, in order, as one row each under a header row.
// A1 of a second sheet records the query.
func WriteXLSX(w io.Writer, query string, items []*models.SearchResultItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, it := range items {
		created := ""
		if !it.CreatedAt.IsZero() {
			created = it.CreatedAt.Format("2006-01-02")
		}
		row := []interface{}{
			i + 1, it.Title, it.Author, it.Category, strings.Join(it.Tags, ", "),
			it.RelevanceScore, string(models.TierFor(it.RelevanceScore)), it.ExactPhrase(), created, it.ID,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet("Query"); err != nil {
		return fmt.Errorf("query sheet: %w", err)
	}
	if err := f.SetCellValue("Query", "A1", query); err != nil {
		return fmt.Errorf("write query: %w", err)
	}
	if err := f.SetCellValue("Query", "A2", len(items)); err != nil {
		return fmt.Errorf("write count: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path, query string, items []*models.SearchResultItem) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := WriteXLSX(out, query, items); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
