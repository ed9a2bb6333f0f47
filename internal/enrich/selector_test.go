// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"testing"

	"github.com/pdiddy/affiliation-engine/pkg/types"
)

func TestSelectFirstResultTakesHead(t *testing.T) {
	c := &types.Citation{
		Title:   "The Structure of Scientific Revolutions",
		Authors: []types.AuthorName{{Full: "Thomas Kuhn"}},
	}
	records := []types.MatchCandidate{
		{ID: "first", Titles: []string{"The Essential Tension"}, Authors: []types.AuthorName{{Full: "Thomas Kuhn"}}},
		{ID: "second", Titles: []string{"The Structure of Scientific Revolutions"}},
	}

	sel := Select(c, records, FirstResult)
	if sel.Candidate == nil || sel.Candidate.ID != "first" {
		t.Fatalf("candidate = %+v, want the head record", sel.Candidate)
	}
	if sel.Similarity == nil || *sel.Similarity == 100 {
		t.Errorf("similarity = %v, want a sub-100 score for the head record", sel.Similarity)
	}
}

func TestSelectFirstResultExactMatch(t *testing.T) {
	c := &types.Citation{
		Title:   "The Structure of Scientific Revolutions",
		Authors: []types.AuthorName{{Full: "Thomas Kuhn"}},
	}
	records := []types.MatchCandidate{
		{ID: "w1", Titles: []string{"The Structure of Scientific Revolutions"}, Authors: []types.AuthorName{{Full: "Thomas Kuhn"}}},
	}

	sel := Select(c, records, FirstResult)
	if sel.Similarity == nil || *sel.Similarity != 100 {
		t.Errorf("similarity = %v, want 100", sel.Similarity)
	}
}

func TestSelectBestOfSetPicksBestTitle(t *testing.T) {
	c := &types.Citation{Title: "Critique of Pure Reason"}
	records := []types.MatchCandidate{
		{ID: "a", Titles: []string{"Critique of Practical Reason"}},
		{ID: "b", Titles: []string{"Critique of Pure Reason"}},
		{ID: "c", Titles: []string{"Prolegomena"}},
	}

	sel := Select(c, records, BestOfSet)
	if sel.Candidate == nil || sel.Candidate.ID != "b" {
		t.Fatalf("candidate = %+v, want record b", sel.Candidate)
	}
	if sel.Similarity == nil || *sel.Similarity != 100 {
		t.Errorf("similarity = %v, want 100", sel.Similarity)
	}
}

func TestSelectBestOfSetSubtitleTruncation(t *testing.T) {
	c := &types.Citation{Title: "Meditations"}
	records := []types.MatchCandidate{
		{ID: "m", Titles: []string{"Meditations: On First Philosophy"}},
	}

	sel := Select(c, records, BestOfSet)
	if sel.Candidate == nil || sel.Candidate.ID != "m" {
		t.Fatalf("candidate = %+v, want record m", sel.Candidate)
	}
	if sel.Similarity == nil || *sel.Similarity != 100 {
		t.Errorf("similarity = %v, want 100 via subtitle truncation", sel.Similarity)
	}
}

func TestSelectBestOfSetAuthorMismatchLowersScore(t *testing.T) {
	c := &types.Citation{
		Title:   "Critique of Pure Reason",
		Authors: []types.AuthorName{{Full: "Immanuel Kant"}},
	}
	records := []types.MatchCandidate{
		{ID: "x", Titles: []string{"Critique of Pure Reason"}, Authors: []types.AuthorName{{Full: "Norman Kemp Smith"}}},
	}

	sel := Select(c, records, BestOfSet)
	if sel.Similarity == nil || *sel.Similarity >= 100 {
		t.Errorf("similarity = %v, want the author mismatch to lower it", sel.Similarity)
	}
}

func TestSelectBestOfSetSoleRecordWithoutTitles(t *testing.T) {
	c := &types.Citation{Title: "Symposium"}
	records := []types.MatchCandidate{
		{ID: "auth-1", CountryTokens: [][]string{{"GR"}}},
	}

	sel := Select(c, records, BestOfSet)
	if sel.Candidate == nil || sel.Candidate.ID != "auth-1" {
		t.Fatalf("candidate = %+v, want the sole record", sel.Candidate)
	}
	if sel.Similarity == nil || *sel.Similarity != 0 {
		t.Errorf("similarity = %v, want provisional 0", sel.Similarity)
	}
}

func TestSelectBestOfSetAmbiguousWithoutTitles(t *testing.T) {
	c := &types.Citation{Title: "Symposium"}
	records := []types.MatchCandidate{
		{ID: "auth-1"},
		{ID: "auth-2"},
	}

	sel := Select(c, records, BestOfSet)
	if sel.Candidate != nil {
		t.Errorf("candidate = %+v, want none for ambiguous titleless set", sel.Candidate)
	}
}

func TestSelectEmptySet(t *testing.T) {
	c := &types.Citation{Title: "Symposium"}
	if sel := Select(c, nil, BestOfSet); sel.Candidate != nil {
		t.Errorf("candidate = %+v, want none for empty set", sel.Candidate)
	}
}
