package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hyperjump/scribe/internal/models"
)

// parsePDF reads the document's Info dictionary for title and author and joins page text
// into paragraphs.
func parsePDF(content []byte) (*models.Post, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	pages := make([]string, 0, r.NumPage())
	for n := 1; n <= r.NumPage(); n++ {
		p := r.Page(n)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("PDF page %d: %w", n, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	info := r.Trailer().Key("Info")
	return &models.Post{
		Title:   strings.TrimSpace(info.Key("Title").Text()),
		Author:  strings.TrimSpace(info.Key("Author").Text()),
		Content: strings.Join(pages, "\n\n"),
	}, nil
}
