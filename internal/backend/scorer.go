package backend

import (
	"math"
	"sort"

	"github.com/hyperjump/scribe/internal/keyword"
	"github.com/hyperjump/scribe/internal/models"
)

// Relevance weights. A post matching the query as a phrase and by every word with the
// best keyword score reaches 100.
const (
	keywordWeight = 50.0
	phraseBonus   = 30.0
	allWordsBonus = 20.0
)

// normalizeScores maps each hit's keyword score to [0,1] by the best score in hits.
func normalizeScores(hits []*keyword.Hit) map[string]float64 {
	normalized := make(map[string]float64, len(hits))
	maxScore := 0.0
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	for _, h := range hits {
		if maxScore > 0 {
			normalized[h.ID] = h.Score / maxScore
		} else {
			normalized[h.ID] = 0
		}
	}
	return normalized
}

// relevance combines a normalized keyword score with the match bonuses, rounded to two decimals.
func relevance(normalized float64, h *keyword.Hit) float64 {
	score := keywordWeight * normalized
	if h.ExactPhrase {
		score += phraseBonus
	}
	if h.AllWords {
		score += allWordsBonus
	}
	return math.Round(score*100) / 100
}

// sortByScore orders items by relevance, best first, keeping index order on ties.
func sortByScore(items []*models.SearchResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
}
