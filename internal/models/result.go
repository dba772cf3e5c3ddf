package models

import "time"

// MatchDetails describes how a result matched the query on the remote side.
type MatchDetails struct {
	ExactPhraseMatch bool `json:"exactPhraseMatch"`
	MatchesAllWords  bool `json:"matchesAllWords"`
}

// SearchResultItem is a single blog post returned by the remote search endpoint.
// Items are treated as immutable once received within a search session.
type SearchResultItem struct {
	ID             string        `json:"_id"`
	AuthorID       string        `json:"id,omitempty"`
	Title          string        `json:"title"`
	Author         string        `json:"author"`
	Category       string        `json:"category"`
	Tags           []string      `json:"tags"`
	Image          string        `json:"image,omitempty"`
	Description    string        `json:"description,omitempty"`
	RelevanceScore float64       `json:"relevanceScore"`
	MatchDetails   *MatchDetails `json:"matchDetails,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// ExactPhrase reports whether the remote side flagged an exact phrase match.
func (i *SearchResultItem) ExactPhrase() bool {
	return i.MatchDetails != nil && i.MatchDetails.ExactPhraseMatch
}

// SearchMetadata is the optional metadata record sent with a result list.
type SearchMetadata struct {
	TopScore     float64 `json:"topScore"`
	TotalResults int     `json:"totalResults"`
	Query        string  `json:"query,omitempty"`
}

// SearchResponse is the wire shape of the remote search endpoint.
// Response is nil when the endpoint had nothing to say; callers treat that as zero results.
type SearchResponse struct {
	Response       []*SearchResultItem `json:"response"`
	SearchMetadata *SearchMetadata     `json:"searchMetadata,omitempty"`
}

// SearchRequest is the body posted to the remote search endpoint.
type SearchRequest struct {
	SearchData string `json:"searchData"`
}

// DetailResponse wraps a single post returned by the detail endpoint.
type DetailResponse struct {
	Blog *Post `json:"blog"`
}

// RelevanceTier buckets a score for display.
type RelevanceTier string

const (
	TierHigh       RelevanceTier = "high"
	TierMediumHigh RelevanceTier = "medium-high"
	TierMedium     RelevanceTier = "medium"
	TierLow        RelevanceTier = "low"
)

// TierFor returns the display tier for a relevance score.
func TierFor(score float64) RelevanceTier {
	switch {
	case score >= 50:
		return TierHigh
	case score >= 30:
		return TierMediumHigh
	case score >= 20:
		return TierMedium
	default:
		return TierLow
	}
}
