package models

import (
	"errors"
	"math"
	"testing"
)

func TestFilterCriteria_Validate(t *testing.T) {
	tests := []struct {
		name     string
		criteria FilterCriteria
		wantErr  bool
	}{
		{"zero value normalizes", FilterCriteria{}, false},
		{"recent sort", FilterCriteria{SortBy: SortRecent}, false},
		{"unknown sort", FilterCriteria{SortBy: "oldest"}, true},
		{"negative min score", FilterCriteria{MinScore: -1}, true},
		{"nan min score", FilterCriteria{MinScore: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCriteria) {
				t.Errorf("error %v should wrap ErrInvalidCriteria", err)
			}
			if !tt.wantErr && (tt.criteria.Category != All || tt.criteria.Author != All) {
				t.Errorf("selectors not normalized: %+v", tt.criteria)
			}
		})
	}
}

func TestFilterCriteria_WithLeavesReceiverUntouched(t *testing.T) {
	base := DefaultCriteria()
	next, err := base.With(FilterCategory, "Science")
	if err != nil {
		t.Fatal(err)
	}
	if base.Category != All {
		t.Errorf("receiver mutated: %+v", base)
	}
	if next.Category != "Science" || next.Author != All || next.SortBy != SortRelevance {
		t.Errorf("unexpected criteria: %+v", next)
	}

	next, err = next.With(FilterMinScore, "20")
	if err != nil {
		t.Fatal(err)
	}
	if next.MinScore != 20 {
		t.Errorf("min score = %v, want 20", next.MinScore)
	}

	if _, err := next.With(FilterMinScore, "abc"); err == nil {
		t.Error("expected error for non-numeric min score")
	}
	if _, err := next.With("colour", "red"); err == nil {
		t.Error("expected error for unknown filter kind")
	}
	if got, err := next.With(FilterSortBy, "bogus"); err == nil {
		t.Errorf("expected error for unknown sort mode, got %+v", got)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  RelevanceTier
	}{
		{75, TierHigh},
		{50, TierHigh},
		{30, TierMediumHigh},
		{20, TierMedium},
		{19.9, TierLow},
		{0, TierLow},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestPostInput_Validate(t *testing.T) {
	in := &PostInput{Title: "  Go ", Content: "body", Author: "ana", Category: "Tech", Tags: []string{" go ", "", "web"}}
	if err := in.Validate(); err != nil {
		t.Fatal(err)
	}
	if in.Title != "Go" {
		t.Errorf("title not trimmed: %q", in.Title)
	}
	if len(in.Tags) != 2 || in.Tags[0] != "go" || in.Tags[1] != "web" {
		t.Errorf("tags = %v", in.Tags)
	}

	missing := &PostInput{Title: "x", Content: "y", Author: "z"}
	if err := missing.Validate(); !errors.Is(err, ErrInvalidPost) {
		t.Errorf("expected ErrInvalidPost, got %v", err)
	}
}
