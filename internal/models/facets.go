package models

import "sort"

// ScoreBand is a labelled minimum-score breakpoint.
type ScoreBand struct {
	Label    string  `json:"label"`
	Fraction float64 `json:"fraction"`
	MinScore float64 `json:"value"`
}

// FacetSet is the read-only set of filterable dimensions derived from one result set.
type FacetSet struct {
	Categories map[string]struct{} `json:"-"`
	Authors    map[string]struct{} `json:"-"`
	ScoreBands []ScoreBand         `json:"scoreRanges"`
	MaxScore   float64             `json:"maxScore"`
}

// SortedCategories returns the distinct categories in lexical order for display.
func (f *FacetSet) SortedCategories() []string {
	return sortedKeys(f.Categories)
}

// SortedAuthors returns the distinct authors in lexical order for display.
func (f *FacetSet) SortedAuthors() []string {
	return sortedKeys(f.Authors)
}

// HasCategory reports whether category occurs in the result set.
func (f *FacetSet) HasCategory(category string) bool {
	_, ok := f.Categories[category]
	return ok
}

// HasAuthor reports whether author occurs in the result set.
func (f *FacetSet) HasAuthor(author string) bool {
	_, ok := f.Authors[author]
	return ok
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
