package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// All is the selector value that disables the category or author filter.
const All = "all"

// SortMode orders the visible result list.
type SortMode string

const (
	// SortRelevance orders by descending relevance score.
	SortRelevance SortMode = "relevance"
	// SortRecent orders by descending creation time.
	SortRecent SortMode = "recent"
)

// ErrInvalidCriteria is returned by FilterCriteria.Validate and FilterCriteria.With.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// FilterCriteria selects and orders the visible subset of a result set.
// It is a value type: every change produces a new FilterCriteria, never an in-place edit.
type FilterCriteria struct {
	Category string   `json:"category"`
	Author   string   `json:"author"`
	SortBy   SortMode `json:"sortBy"`
	MinScore float64  `json:"minScore"`
}

// DefaultCriteria returns criteria that show every item ordered by relevance.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Category: All, Author: All, SortBy: SortRelevance, MinScore: 0}
}

// Validate normalizes empty selectors to "all" and an empty sort mode to relevance.
// Returns an error for an unknown sort mode or a negative or non-finite minimum score.
func (c *FilterCriteria) Validate() error {
	if c.Category == "" {
		c.Category = All
	}
	if c.Author == "" {
		c.Author = All
	}
	if c.SortBy == "" {
		c.SortBy = SortRelevance
	}
	if c.SortBy != SortRelevance && c.SortBy != SortRecent {
		return fmt.Errorf("%w: unknown sort mode %q", ErrInvalidCriteria, c.SortBy)
	}
	if c.MinScore < 0 || math.IsNaN(c.MinScore) || math.IsInf(c.MinScore, 0) {
		return fmt.Errorf("%w: min score must be a non-negative number", ErrInvalidCriteria)
	}
	return nil
}

// FilterKind names one field of FilterCriteria.
type FilterKind string

const (
	FilterCategory FilterKind = "category"
	FilterAuthor   FilterKind = "author"
	FilterSortBy   FilterKind = "sortBy"
	FilterMinScore FilterKind = "minScore"
)

// With returns a copy of c with one field replaced. The receiver is left untouched.
func (c FilterCriteria) With(kind FilterKind, value string) (FilterCriteria, error) {
	next := c
	switch kind {
	case FilterCategory:
		next.Category = value
	case FilterAuthor:
		next.Author = value
	case FilterSortBy:
		next.SortBy = SortMode(value)
	case FilterMinScore:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return c, fmt.Errorf("%w: min score %q: %v", ErrInvalidCriteria, value, err)
		}
		next.MinScore = v
	default:
		return c, fmt.Errorf("%w: unknown filter %q", ErrInvalidCriteria, kind)
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

// IsDefault reports whether c equals DefaultCriteria.
func (c FilterCriteria) IsDefault() bool {
	return c == DefaultCriteria()
}
