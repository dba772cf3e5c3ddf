package results

import (
	"github.com/hyperjump/scribe/internal/dispatch"
	"github.com/hyperjump/scribe/internal/models"
)

// Snapshot is the rendered state of a result view.
type Snapshot struct {
	Query      string                     `json:"query"`
	Loading    bool                       `json:"loading"`
	Error      string                     `json:"error,omitempty"`
	Items      []*models.SearchResultItem `json:"items"`
	Total      int                        `json:"total"`
	Metadata   models.SearchMetadata      `json:"metadata"`
	Criteria   models.FilterCriteria      `json:"criteria"`
	Categories []string                   `json:"categories"`
	Authors    []string                   `json:"authors"`
	Bands      []models.ScoreBand         `json:"scoreRanges"`
	ActiveBand string                     `json:"activeBand"`
}

// View is the full-search lane of one session. It keeps the untouched result set and the
// current criteria; the visible list is derived on every Snapshot.
// A View is owned by a single goroutine.
type View struct {
	lane     dispatch.Lane
	query    string
	loading  bool
	err      error
	entry    *Entry
	criteria models.FilterCriteria
}

// NewView returns an empty view with default criteria.
func NewView() *View {
	return &View{criteria: models.DefaultCriteria()}
}

// Begin starts a full search for query and returns its token. Any earlier search in
// flight loses its right to update the view. Criteria reset to defaults.
func (v *View) Begin(query string) dispatch.Token {
	v.query = query
	v.loading = true
	v.err = nil
	v.entry = nil
	v.criteria = models.DefaultCriteria()
	return v.lane.Issue()
}

// Resolve installs entry if t is still the current token.
func (v *View) Resolve(t dispatch.Token, entry *Entry) bool {
	if !v.lane.Current(t) {
		return false
	}
	v.loading = false
	v.err = nil
	v.entry = entry
	return true
}

// Fail records err if t is still the current token.
func (v *View) Fail(t dispatch.Token, err error) bool {
	if !v.lane.Current(t) {
		return false
	}
	v.loading = false
	v.err = err
	v.entry = nil
	return true
}

// Query returns the query of the latest search.
func (v *View) Query() string {
	return v.query
}

// Err returns the failure of the latest search, if any.
func (v *View) Err() error {
	return v.err
}

// Criteria returns the active criteria.
func (v *View) Criteria() models.FilterCriteria {
	return v.criteria
}

// SetCriteria replaces the criteria as one value.
func (v *View) SetCriteria(c models.FilterCriteria) error {
	if err := c.Validate(); err != nil {
		return err
	}
	v.criteria = c
	return nil
}

// SetFilter replaces one field of the criteria.
func (v *View) SetFilter(kind models.FilterKind, value string) error {
	next, err := v.criteria.With(kind, value)
	if err != nil {
		return err
	}
	v.criteria = next
	return nil
}

// ClearFilters restores the default criteria.
func (v *View) ClearFilters() {
	v.criteria = models.DefaultCriteria()
}

// Snapshot derives the visible state from the full result set and the criteria.
func (v *View) Snapshot() Snapshot {
	s := Snapshot{Query: v.query, Loading: v.loading, Criteria: v.criteria}
	if v.err != nil {
		s.Error = v.err.Error()
	}
	if v.entry == nil {
		s.Items = []*models.SearchResultItem{}
		return s
	}
	return Project(v.entry, v.criteria, s)
}

// Project fills s with the visible projection of entry under c.
func Project(entry *Entry, c models.FilterCriteria, s Snapshot) Snapshot {
	s.Query = entry.Query
	s.Criteria = c
	s.Items = Apply(entry.Items, c)
	s.Total = len(entry.Items)
	s.Metadata = entry.Metadata
	s.Categories = entry.Facets.SortedCategories()
	s.Authors = entry.Facets.SortedAuthors()
	s.Bands = entry.Facets.ScoreBands
	s.ActiveBand = ActiveBand(entry.Facets, c.MinScore)
	return s
}
