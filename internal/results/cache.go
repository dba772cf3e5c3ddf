package results

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/scribe/internal/models"
)

// Entry is one committed search: the untouched full result set and what was derived from it.
type Entry struct {
	Query     string
	Items     []*models.SearchResultItem
	Metadata  models.SearchMetadata
	Facets    *models.FacetSet
	FetchedAt time.Time
}

// NewEntry builds an entry for query from a remote response. A nil response or a missing
// result list yields an empty entry.
func NewEntry(query string, resp *models.SearchResponse, now time.Time) *Entry {
	var items []*models.SearchResultItem
	if resp != nil {
		items = make([]*models.SearchResultItem, 0, len(resp.Response))
		for _, it := range resp.Response {
			if it != nil {
				items = append(items, it)
			}
		}
	}
	e := &Entry{Query: query, Items: items, Facets: BuildFacets(items), FetchedAt: now}
	if resp != nil && resp.SearchMetadata != nil {
		e.Metadata = *resp.SearchMetadata
	}
	if e.Metadata.TotalResults == 0 {
		e.Metadata.TotalResults = len(items)
	}
	if e.Metadata.TopScore == 0 {
		e.Metadata.TopScore = e.Facets.MaxScore
	}
	if e.Metadata.Query == "" {
		e.Metadata.Query = query
	}
	return e
}

// Cache is an LRU cache of committed searches keyed by normalized query.
// Entries older than the TTL are treated as missing.
type Cache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value *Entry
}

// NewCache creates a cache holding at most capacity entries. A zero ttl disables expiry.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Key normalizes a raw query for cache lookup.
func Key(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Get returns the cached entry for query if present and fresh.
func (c *Cache) Get(query string) (*Entry, bool) {
	key := Key(query)
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	e := elem.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(e.value.FetchedAt) > c.ttl {
		c.lru.Remove(elem)
		delete(c.cache, key)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return e.value, true
}

// Set stores entry under its query, evicting the least recently used entry if at capacity.
func (c *Cache) Set(entry *Entry) {
	key := Key(entry.Query)
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = entry
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, value: entry})
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Searcher runs a full search against the remote endpoint.
type Searcher interface {
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
}

// Load returns the cached entry for query or fetches and caches it.
// A nil cache always fetches.
func Load(ctx context.Context, cache *Cache, s Searcher, query string) (*Entry, error) {
	if cache != nil {
		if e, ok := cache.Get(query); ok {
			return e, nil
		}
	}
	resp, err := s.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	now := time.Now()
	if cache != nil {
		now = cache.now()
	}
	e := NewEntry(query, resp, now)
	if cache != nil {
		cache.Set(e)
	}
	return e, nil
}
