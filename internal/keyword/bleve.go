package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/scribe/internal/models"
)

// searchableFields are the text fields every query runs against.
var searchableFields = []string{"title", "content", "tags", "category", "author"}

// indexedPost is the document shape stored in the index.
type indexedPost struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
	Author   string   `json:"author"`
}

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// An existing index is reused; remove the directory after changing the mapping.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemoryIndex creates an in-memory Bleve index.
func NewMemoryIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	postMapping := bleve.NewDocumentMapping()
	// Standard analyzer: lowercase and tokenize without stemming, so terms match as typed.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	for _, f := range searchableFields {
		postMapping.AddFieldMappingsAt(f, text)
	}
	postMapping.AddFieldMappingsAt("id", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("post", postMapping)
	im.DefaultType = "post"
	im.DefaultMapping = postMapping
	return im
}

// Index adds or replaces post in the index.
func (b *BleveIndex) Index(ctx context.Context, post *models.Post) error {
	return b.index.Index(post.ID, indexedPost{
		ID:       post.ID,
		Title:    post.Title,
		Content:  post.Content,
		Tags:     post.Tags,
		Category: post.Category,
		Author:   post.Author,
	})
}

// Search matches query against every text field and returns up to limit hits, best first.
// Each hit reports whether it matched the query as a phrase and whether it matched all terms.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error) {
	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return []*Hit{}, nil
	}
	titleBoost := 1.0
	fuzziness := 2
	fuzzy := false
	if opts != nil {
		if opts.TitleBoost > 1 {
			titleBoost = opts.TitleBoost
		}
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
		fuzzy = opts.FuzzyFallback
	}
	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	hits, err := b.run(ctx, b.matchQuery(query, titleBoost), reqSize)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 && fuzzy {
		hits, err = b.run(ctx, b.fuzzyQuery(terms, fuzziness), reqSize)
		if err != nil {
			return nil, err
		}
	}

	coverage := b.termCoverage(ctx, terms, reqSize)
	phrases := b.phraseMatches(ctx, query, reqSize)
	for _, h := range hits {
		h.AllWords = coverage[h.ID] == len(terms)
		h.ExactPhrase = phrases[h.ID]
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (b *BleveIndex) run(ctx context.Context, q blevequery.Query, size int) ([]*Hit, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = size
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Hit, len(res.Hits))
	for i, hit := range res.Hits {
		out[i] = &Hit{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// matchQuery ORs a match query per field, boosting the title.
func (b *BleveIndex) matchQuery(query string, titleBoost float64) blevequery.Query {
	queries := make([]blevequery.Query, 0, len(searchableFields))
	for _, f := range searchableFields {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(f)
		if f == "title" && titleBoost > 1 {
			mq.SetBoost(titleBoost)
		}
		queries = append(queries, mq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func (b *BleveIndex) fuzzyQuery(terms []string, fuzziness int) blevequery.Query {
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into unique lowercase terms.
func tokenizeQuery(query string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// termCoverage counts how many distinct query terms each post matches.
func (b *BleveIndex) termCoverage(ctx context.Context, terms []string, size int) map[string]int {
	coverage := make(map[string]int)
	for _, term := range terms {
		hits, err := b.run(ctx, b.matchQuery(term, 1), size)
		if err != nil {
			continue
		}
		for _, h := range hits {
			coverage[h.ID]++
		}
	}
	return coverage
}

// phraseMatches finds posts whose title or content contains query as a phrase.
func (b *BleveIndex) phraseMatches(ctx context.Context, query string, size int) map[string]bool {
	matches := make(map[string]bool)
	for _, field := range []string{"title", "content"} {
		pq := bleve.NewMatchPhraseQuery(query)
		pq.SetField(field)
		hits, err := b.run(ctx, pq, size)
		if err != nil {
			continue
		}
		for _, h := range hits {
			matches[h.ID] = true
		}
	}
	return matches
}

// Delete removes a post from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the number of indexed posts.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
