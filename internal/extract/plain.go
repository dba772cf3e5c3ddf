package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/scribe/internal/models"
)

// maxPlainTitle bounds how long a first line may be and still count as a title.
const maxPlainTitle = 120

// extractPlain returns content as string, validating it is valid UTF-8.
// Invalid UTF-8 sequences are replaced with the replacement character.
func extractPlain(content []byte) string {
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "\ufffd"))
	}
	return string(content)
}

// parsePlain uses a short first line as the title and the rest as the body.
func parsePlain(content []byte) (*models.Post, error) {
	text := strings.TrimSpace(extractPlain(content))
	first, rest, found := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)
	if !found || len(first) > maxPlainTitle || strings.TrimSpace(rest) == "" {
		return &models.Post{Content: text}, nil
	}
	return &models.Post{Title: first, Content: rest}, nil
}
