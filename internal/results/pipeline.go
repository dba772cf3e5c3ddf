// Package results derives the visible result list from a full result set and filter criteria,
// and caches committed searches with their facets.
package results

import (
	"sort"

	"github.com/hyperjump/scribe/internal/models"
)

// Apply returns the visible projection of items under c.
// Items are filtered by minimum score, then category, then author, and finally sorted.
// The input slice is never modified; Apply(Apply(items, c), c) equals Apply(items, c).
func Apply(items []*models.SearchResultItem, c models.FilterCriteria) []*models.SearchResultItem {
	out := make([]*models.SearchResultItem, 0, len(items))
	for _, it := range items {
		if it == nil || it.RelevanceScore < c.MinScore {
			continue
		}
		if !selects(c.Category, it.Category) || !selects(c.Author, it.Author) {
			continue
		}
		out = append(out, it)
	}
	Sort(out, c.SortBy)
	return out
}

// Sort orders items in place. Ties keep their prior relative order.
func Sort(items []*models.SearchResultItem, mode models.SortMode) {
	switch mode {
	case models.SortRecent:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].RelevanceScore > items[j].RelevanceScore
		})
	}
}

func selects(selector, value string) bool {
	return selector == "" || selector == models.All || selector == value
}
