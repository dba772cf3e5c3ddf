package results

import "github.com/hyperjump/scribe/internal/models"

// Bands are the score-band breakpoints as fractions of the top score in a result set.
var Bands = []struct {
	Label    string
	Fraction float64
}{
	{"All", 0},
	{"Good Matches", 0.3},
	{"Better Matches", 0.5},
	{"Best Matches", 0.7},
}

// BuildFacets derives the facet set of a full result set. An empty set has a zero maximum
// and every band at zero.
func BuildFacets(items []*models.SearchResultItem) *models.FacetSet {
	f := &models.FacetSet{
		Categories: make(map[string]struct{}),
		Authors:    make(map[string]struct{}),
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		if it.Category != "" {
			f.Categories[it.Category] = struct{}{}
		}
		if it.Author != "" {
			f.Authors[it.Author] = struct{}{}
		}
		if it.RelevanceScore > f.MaxScore {
			f.MaxScore = it.RelevanceScore
		}
	}
	f.ScoreBands = make([]models.ScoreBand, len(Bands))
	for i, b := range Bands {
		f.ScoreBands[i] = models.ScoreBand{Label: b.Label, Fraction: b.Fraction, MinScore: b.Fraction * f.MaxScore}
	}
	return f
}

// ActiveBand returns the label of the highest band whose threshold does not exceed minScore.
// Bands sharing a threshold resolve to the first of them.
func ActiveBand(f *models.FacetSet, minScore float64) string {
	label, best := "", -1.0
	for _, b := range f.ScoreBands {
		if b.MinScore <= minScore && b.MinScore > best {
			label, best = b.Label, b.MinScore
		}
	}
	return label
}
