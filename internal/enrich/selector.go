// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"github.com/pdiddy/affiliation-engine/internal/similarity"
	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// subtitleSeparator splits a title from its subtitle for the fairer
// truncated comparison.
const subtitleSeparator = ':'

// Selection is the outcome of candidate selection for one result set.
type Selection struct {
	// Candidate is the chosen record.
	Candidate *types.MatchCandidate

	// Similarity is the combined 0-100 score, nil when no comparison was
	// possible. A provisional sole-result authority match carries 0.
	Similarity *int
}

// Select picks the best candidate from a non-empty result set under the
// source's discipline.
func Select(c *types.Citation, records []types.MatchCandidate, d Discipline) Selection {
	if len(records) == 0 {
		return Selection{}
	}
	if d == FirstResult {
		return selectFirst(c, records)
	}
	return selectBest(c, records)
}

// selectFirst takes result[0] of a pre-ranked list and scores it after the
// fact.
func selectFirst(c *types.Citation, records []types.MatchCandidate) Selection {
	cand := records[0]
	return Selection{
		Candidate:  &cand,
		Similarity: combinedScore(c, &cand),
	}
}

// selectBest iterates every record, tracks the maximum title similarity
// against all known title variants, and exits early on a perfect score. A
// record with no comparable titles is accepted only as the sole result,
// with a provisional similarity of 0: the single unambiguous authority
// match lacking bibliographic detail.
func selectBest(c *types.Citation, records []types.MatchCandidate) Selection {
	variants := c.TitleVariants()

	bestScore := -1
	bestIdx := -1
	for i := range records {
		score := titleScore(variants, records[i].Titles)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
		if bestScore == 100 {
			break
		}
	}

	if bestIdx < 0 || bestScore < 0 {
		if len(records) == 1 {
			zero := 0
			return Selection{Candidate: &records[0], Similarity: &zero}
		}
		return Selection{}
	}

	cand := records[bestIdx]
	score := bestScore
	if authorSim := authorScore(c, &cand); authorSim >= 0 {
		score = score * authorSim / 100
	}
	return Selection{Candidate: &cand, Similarity: &score}
}

// combinedScore computes floor(titleSim * authorSim / 100) when both are
// available, title similarity alone otherwise, nil when neither is.
func combinedScore(c *types.Citation, cand *types.MatchCandidate) *int {
	titleSim := titleScore(c.TitleVariants(), cand.Titles)
	authorSim := authorScore(c, cand)

	switch {
	case titleSim >= 0 && authorSim >= 0:
		combined := titleSim * authorSim / 100
		return &combined
	case titleSim >= 0:
		return &titleSim
	case authorSim >= 0:
		return &authorSim
	default:
		return nil
	}
}

// titleScore is the maximum similarity across all title pairings, taking
// the better of the literal and the truncated-at-subtitle comparison.
func titleScore(variants, titles []string) int {
	best := similarity.ScoreAny(variants, titles, similarity.Options{})
	if best == 100 {
		return best
	}
	if truncated := similarity.ScoreAny(variants, titles, similarity.Options{TruncateAt: subtitleSeparator}); truncated > best {
		best = truncated
	}
	return best
}

// authorScore is the maximum similarity across all pairings of
// citation-known author forms and candidate author forms.
func authorScore(c *types.Citation, cand *types.MatchCandidate) int {
	var citForms, candForms []string
	for _, a := range c.Authors {
		citForms = append(citForms, a.Forms()...)
	}
	for _, a := range cand.Authors {
		candForms = append(candForms, a.Forms()...)
	}
	return similarity.ScoreAny(citForms, candForms, similarity.Options{})
}
