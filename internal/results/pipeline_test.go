package results

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/scribe/internal/models"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func item(id, category, author string, score float64, day int) *models.SearchResultItem {
	return &models.SearchResultItem{
		ID:             id,
		Title:          "Post " + id,
		Category:       category,
		Author:         author,
		RelevanceScore: score,
		CreatedAt:      epoch.AddDate(0, 0, day),
	}
}

// tenItems has three Science posts scoring at least 20.
func tenItems() []*models.SearchResultItem {
	return []*models.SearchResultItem{
		item("1", "Science", "ana", 25, 1),
		item("2", "Travel", "ben", 60, 2),
		item("3", "Science", "cy", 12, 3),
		item("4", "Science", "ana", 80, 4),
		item("5", "Food", "ben", 33, 5),
		item("6", "Science", "dee", 20, 6),
		item("7", "Travel", "cy", 5, 7),
		item("8", "Food", "ana", 47, 8),
		item("9", "Tech", "dee", 90, 9),
		item("10", "Science", "ben", 19.9, 10),
	}
}

func ids(items []*models.SearchResultItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestApply_ScienceScenario(t *testing.T) {
	c := models.DefaultCriteria()
	c.Category = "Science"
	c.MinScore = 20

	got := Apply(tenItems(), c)

	assert.Equal(t, []string{"4", "1", "6"}, ids(got))
}

func TestApply_DefaultsYieldFullSetByScore(t *testing.T) {
	all := tenItems()
	got := Apply(all, models.DefaultCriteria())

	require.Len(t, got, len(all))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].RelevanceScore, got[i].RelevanceScore)
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	all := tenItems()
	before := ids(all)
	_ = Apply(all, models.FilterCriteria{Category: models.All, Author: "ana", SortBy: models.SortRecent})
	assert.Equal(t, before, ids(all))
}

func TestApply_Recent(t *testing.T) {
	c := models.DefaultCriteria()
	c.SortBy = models.SortRecent
	c.Author = "ben"

	assert.Equal(t, []string{"10", "5", "2"}, ids(Apply(tenItems(), c)))
}

func TestApply_StableTies(t *testing.T) {
	all := []*models.SearchResultItem{
		item("a", "x", "p", 10, 0),
		item("b", "x", "p", 30, 0),
		item("c", "x", "p", 10, 0),
		item("d", "x", "p", 10, 0),
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids(Apply(all, models.DefaultCriteria())))
}

func TestApply_EmptySelectorMeansAll(t *testing.T) {
	got := Apply(tenItems(), models.FilterCriteria{})
	assert.Len(t, got, 10)
}

func randomCriteria(r *rand.Rand) models.FilterCriteria {
	categories := []string{models.All, "Science", "Travel", "Food", "Tech"}
	authors := []string{models.All, "ana", "ben", "cy", "dee"}
	sorts := []models.SortMode{models.SortRelevance, models.SortRecent}
	return models.FilterCriteria{
		Category: categories[r.Intn(len(categories))],
		Author:   authors[r.Intn(len(authors))],
		SortBy:   sorts[r.Intn(len(sorts))],
		MinScore: float64(r.Intn(100)),
	}
}

func TestApply_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	all := tenItems()

	for i := 0; i < 200; i++ {
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			c := randomCriteria(r)

			once := Apply(all, c)
			assert.Equal(t, ids(once), ids(Apply(once, c)), "idempotent")
			assert.Equal(t, ids(once), ids(Apply(all, c)), "deterministic")

			v := NewView()
			tok := v.Begin("q")
			require.True(t, v.Resolve(tok, NewEntry("q", &models.SearchResponse{Response: all}, epoch)))
			steps := 1 + r.Intn(5)
			var last models.FilterCriteria
			for s := 0; s < steps; s++ {
				last = randomCriteria(r)
				require.NoError(t, v.SetCriteria(last))
			}
			assert.Equal(t, ids(Apply(all, last)), ids(v.Snapshot().Items), "no drift")
		})
	}
}

func TestBuildFacets(t *testing.T) {
	f := BuildFacets(tenItems())

	assert.Equal(t, []string{"Food", "Science", "Tech", "Travel"}, f.SortedCategories())
	assert.Equal(t, []string{"ana", "ben", "cy", "dee"}, f.SortedAuthors())
	assert.Equal(t, 90.0, f.MaxScore)
	require.Len(t, f.ScoreBands, 4)
	assert.Equal(t, "All", f.ScoreBands[0].Label)
	assert.InDelta(t, 27.0, f.ScoreBands[1].MinScore, 1e-9)
	assert.InDelta(t, 45.0, f.ScoreBands[2].MinScore, 1e-9)
	assert.InDelta(t, 63.0, f.ScoreBands[3].MinScore, 1e-9)
	assert.True(t, f.HasCategory("Tech"))
	assert.False(t, f.HasAuthor("zed"))
}

func TestBuildFacets_Empty(t *testing.T) {
	f := BuildFacets(nil)
	assert.Zero(t, f.MaxScore)
	for _, b := range f.ScoreBands {
		assert.Zero(t, b.MinScore)
	}
	assert.Equal(t, "All", ActiveBand(f, 0))
}

func TestActiveBand(t *testing.T) {
	f := BuildFacets(tenItems())
	tests := []struct {
		min  float64
		want string
	}{
		{0, "All"},
		{20, "All"},
		{28, "Good Matches"},
		{46, "Better Matches"},
		{64, "Best Matches"},
		{99, "Best Matches"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActiveBand(f, tt.min), "minScore %v", tt.min)
	}
}
