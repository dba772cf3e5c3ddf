// Package highlight marks case-insensitive occurrences of query terms in text.
package highlight

import (
	"html/template"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

// Span is a half-open byte range [Start, End) of a match in the source text.
type Span struct {
	Start int
	End   int
}

// Segment is a run of source text that either matched a query term or did not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Terms splits query on whitespace and drops empty terms.
func Terms(query string) []string {
	return strings.Fields(query)
}

// Spans returns the merged, ordered byte ranges of text matched by any query term.
// Overlapping matches of different terms collapse into one span.
func Spans(text, query string) []Span {
	terms := Terms(query)
	if len(terms) == 0 || text == "" {
		return nil
	}
	m := search.New(language.Und, search.IgnoreCase)
	var spans []Span
	for _, term := range terms {
		pat := m.CompileString(term)
		offset := 0
		for offset < len(text) {
			start, end := pat.IndexString(text[offset:])
			if start < 0 {
				break
			}
			if end <= start {
				// zero-width match; step over one rune so the loop advances
				_, size := utf8.DecodeRuneInString(text[offset+start:])
				offset += start + size
				continue
			}
			spans = append(spans, Span{Start: offset + start, End: offset + end})
			offset += end
		}
	}
	return merge(spans)
}

func merge(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start == spans[j].Start {
			return spans[i].End > spans[j].End
		}
		return spans[i].Start < spans[j].Start
	})
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// Segments splits text into alternating matched and unmatched runs.
// Concatenating the Text of every segment yields text byte-for-byte.
func Segments(text, query string) []Segment {
	spans := Spans(text, query)
	if len(spans) == 0 {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}
	segs := make([]Segment, 0, 2*len(spans)+1)
	pos := 0
	for _, s := range spans {
		if s.Start > pos {
			segs = append(segs, Segment{Text: text[pos:s.Start]})
		}
		segs = append(segs, Segment{Text: text[s.Start:s.End], Match: true})
		pos = s.End
	}
	if pos < len(text) {
		segs = append(segs, Segment{Text: text[pos:]})
	}
	return segs
}

// Mark wraps every matched run with open and close markers.
// An empty or whitespace-only query returns text unchanged.
func Mark(text, query, open, close string) string {
	spans := Spans(text, query)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(open)+len(close)))
	pos := 0
	for _, s := range spans {
		b.WriteString(text[pos:s.Start])
		b.WriteString(open)
		b.WriteString(text[s.Start:s.End])
		b.WriteString(close)
		pos = s.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// Highlight wraps matches in <mark> tags without escaping; use HTML for untrusted text.
func Highlight(text, query string) string {
	return Mark(text, query, "<mark>", "</mark>")
}

// HTML escapes text and wraps matches in <mark class="match"> for safe use in templates.
func HTML(text, query string) template.HTML {
	var b strings.Builder
	for _, seg := range Segments(text, query) {
		if seg.Match {
			b.WriteString(`<mark class="match">`)
			b.WriteString(template.HTMLEscapeString(seg.Text))
			b.WriteString(`</mark>`)
			continue
		}
		b.WriteString(template.HTMLEscapeString(seg.Text))
	}
	return template.HTML(b.String())
}

// MatchStyle is the default terminal style for matched runs.
var MatchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

// Terminal renders matched runs with style, leaving the rest of text untouched.
func Terminal(text, query string, style lipgloss.Style) string {
	var b strings.Builder
	for _, seg := range Segments(text, query) {
		if seg.Match {
			b.WriteString(style.Render(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Snippet truncates content to at most maxLen runes, appending "..." if truncated.
// If maxLen is 0 or negative, content is returned unchanged.
func Snippet(content string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(content) <= maxLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:maxLen]) + "..."
}
