package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/scribe/internal/models"
)

type fakeSearcher struct {
	calls int
	resp  *models.SearchResponse
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	f.calls++
	return f.resp, f.err
}

func TestCache_LRU(t *testing.T) {
	c := NewCache(2, 0)
	c.Set(&Entry{Query: "a"})
	c.Set(&Entry{Query: "b"})
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set(&Entry{Query: "c"})

	_, ok = c.Get("b")
	assert.False(t, ok, "b should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_KeyNormalization(t *testing.T) {
	c := NewCache(4, 0)
	c.Set(&Entry{Query: "Green  Leaves"})
	_, ok := c.Get("  green leaves ")
	assert.True(t, ok)
}

func TestCache_TTL(t *testing.T) {
	now := epoch
	c := NewCache(4, time.Minute)
	c.now = func() time.Time { return now }
	c.Set(&Entry{Query: "go", FetchedAt: now})

	now = now.Add(30 * time.Second)
	_, ok := c.Get("go")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("go")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestLoad(t *testing.T) {
	s := &fakeSearcher{resp: &models.SearchResponse{Response: tenItems()}}
	c := NewCache(4, 0)

	e, err := Load(context.Background(), c, s, "science")
	require.NoError(t, err)
	assert.Len(t, e.Items, 10)
	assert.Equal(t, 10, e.Metadata.TotalResults)
	assert.Equal(t, 90.0, e.Metadata.TopScore)

	_, err = Load(context.Background(), c, s, "Science")
	require.NoError(t, err)
	assert.Equal(t, 1, s.calls)
}

func TestLoad_Error(t *testing.T) {
	boom := errors.New("boom")
	s := &fakeSearcher{err: boom}
	c := NewCache(4, 0)

	_, err := Load(context.Background(), c, s, "x")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len())
}

func TestNewEntry_MissingFields(t *testing.T) {
	e := NewEntry("q", nil, epoch)
	assert.Empty(t, e.Items)
	assert.Zero(t, e.Metadata.TotalResults)

	e = NewEntry("q", &models.SearchResponse{
		Response:       []*models.SearchResultItem{nil, item("1", "a", "b", 3, 0)},
		SearchMetadata: &models.SearchMetadata{TopScore: 7, TotalResults: 12},
	}, epoch)
	assert.Len(t, e.Items, 1)
	assert.Equal(t, 7.0, e.Metadata.TopScore)
	assert.Equal(t, 12, e.Metadata.TotalResults)
	assert.Equal(t, "q", e.Metadata.Query)
}
