// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich drives per-source citation enrichment: it plans tiered
// search-strategy cascades, executes them against bibliographic sources
// with caching and rate limiting, and selects the best candidate from each
// result set.
//
// See docs/ARCHITECTURE § Enrichment.
package enrich

import (
	"context"

	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// Discipline selects how a candidate is picked from a source's result set.
type Discipline int

const (
	// FirstResult takes result[0] of a pre-ranked list unconditionally.
	FirstResult Discipline = iota

	// BestOfSet evaluates every record and keeps the highest-scoring one.
	// Used for sources with no meaningful server-side ranking.
	BestOfSet
)

// Query is one fully-resolved query against a source: the strategy
// descriptor that produced it and the literal search string.
type Query struct {
	// Strategy is the tier name (e.g. "doi-exact").
	Strategy string

	// Identifier marks identifier-exact (DOI) tiers, which bypass the
	// similarity inclusion threshold downstream.
	Identifier bool

	// Value is the fully-formed query string. It doubles as the per-run
	// cache key.
	Value string
}

// Source is one external bibliographic data provider. Each source declares
// its strategy-tier cascade via Plan and speaks its own wire protocol in
// Search, returning decoded candidates or a typed failure.
type Source interface {
	Name() string
	Discipline() Discipline
	Plan(c *types.Citation) []Query
	Search(ctx context.Context, q Query) ([]types.MatchCandidate, error)
}

// Tier describes one strategy tier: a named query-field combination.
// Build returns the fully-formed query string, or "" when a field the tier
// requires is missing from the citation.
type Tier struct {
	Name       string
	Identifier bool
	Build      func(c *types.Citation) string
}

// Plan emits the queries for a cascade, most-constrained tier first. Tiers
// missing a required field are skipped, and tiers whose resulting query
// string duplicates an already-emitted tier are suppressed so no query is
// issued twice.
func Plan(c *types.Citation, tiers []Tier) []Query {
	seen := make(map[string]bool, len(tiers))
	var queries []Query
	for _, tier := range tiers {
		value := tier.Build(c)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		queries = append(queries, Query{
			Strategy:   tier.Name,
			Identifier: tier.Identifier,
			Value:      value,
		})
	}
	return queries
}
