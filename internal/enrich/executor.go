// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// cacheEntry memoizes the outcome of one physical query for the run.
type cacheEntry struct {
	records []types.MatchCandidate
	err     error
}

// Executor drives a source's strategy cascade: it issues tiers in order,
// stops at the first tier returning results, records every attempt, and
// owns the per-run query cache and the source's rate limiter.
type Executor struct {
	source  Source
	limiter *rate.Limiter
	cache   map[string]cacheEntry
}

// NewExecutor wraps a source with a per-run cache and a minimum inter-call
// delay between physical requests. A zero delay disables rate limiting.
func NewExecutor(source Source, delay time.Duration) *Executor {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Executor{
		source:  source,
		limiter: limiter,
		cache:   make(map[string]cacheEntry),
	}
}

// Source returns the wrapped source.
func (e *Executor) Source() Source { return e.source }

// Run enriches one citation from the executor's source. Every tier issued
// is logged as a SearchAttempt; tier failures are recorded and treated as
// "no result for this tier", never aborting the citation. The returned
// result is frozen by the caller once the pass completes.
func (e *Executor) Run(ctx context.Context, c *types.Citation) *types.EnrichmentResult {
	result := &types.EnrichmentResult{Source: e.source.Name()}

	for _, q := range e.source.Plan(c) {
		records, cached, err := e.search(ctx, q)
		attempt := types.SearchAttempt{
			Strategy: q.Strategy,
			Query:    q.Value,
			Cached:   cached,
		}
		if err != nil {
			attempt.Error = err.Error()
			result.Attempts = append(result.Attempts, attempt)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", q.Strategy, err))
			continue
		}

		attempt.Results = len(records)
		result.Attempts = append(result.Attempts, attempt)
		if len(records) == 0 {
			continue
		}

		sel := Select(c, records, e.source.Discipline())
		if sel.Candidate == nil {
			continue
		}
		result.Match = sel.Candidate
		result.Similarity = sel.Similarity
		result.IdentifierMatch = q.Identifier
		break
	}

	return result
}

// search resolves a query through the per-run cache, issuing at most one
// physical call per distinct query string. Physical calls wait on the
// source's rate limiter; cache hits do not.
func (e *Executor) search(ctx context.Context, q Query) (records []types.MatchCandidate, cached bool, err error) {
	if entry, ok := e.cache[q.Value]; ok {
		return entry.records, true, entry.err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	records, err = e.source.Search(ctx, q)
	e.cache[q.Value] = cacheEntry{records: records, err: err}
	return records, false, err
}
