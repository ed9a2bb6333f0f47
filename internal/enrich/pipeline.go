// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/affiliation-engine/internal/country"
	"github.com/pdiddy/affiliation-engine/internal/reconcile"
	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// Pipeline runs the sequential batch pass: citations in input order, and
// for each citation every source in declared order, then reconciliation
// and scoring. Output is deterministic given identical source responses.
type Pipeline struct {
	executors  []*Executor
	tables     *country.Tables
	reconciler *reconcile.Reconciler
}

// NewPipeline assembles a pipeline from ordered executors, the taxonomy
// tables, and the reconciliation policy.
func NewPipeline(executors []*Executor, tables *country.Tables, reconciler *reconcile.Reconciler) *Pipeline {
	return &Pipeline{executors: executors, tables: tables, reconciler: reconciler}
}

// RunSummary holds the outcome of a batch run.
type RunSummary struct {
	Citations  int
	Matched    int // citations where at least one source matched
	Attributed int // citations with a reconciled winning source
	Errored    int // citations carrying at least one error annotation
}

// Run enriches every citation. A failure in one citation is recorded on
// that citation and processing continues to the next; the batch is never
// truncated. Progress is written to w.
func (p *Pipeline) Run(ctx context.Context, citations []*types.Citation, w io.Writer) (RunSummary, error) {
	summary := RunSummary{Citations: len(citations)}

	for i, c := range citations {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(citations), c.Title)

		p.enrichOne(ctx, c)
		p.reconciler.Apply(c)

		if anyMatch(c) {
			summary.Matched++
		}
		if c.WinnerSource != "" {
			summary.Attributed++
		}
		if len(c.Errors) > 0 {
			summary.Errored++
			for _, msg := range c.Errors {
				fmt.Fprintf(w, "  warning: %s\n", msg)
			}
		}
	}

	return summary, nil
}

// enrichOne runs every source against one citation, in declared order, and
// resolves the matched candidates' country tokens.
func (p *Pipeline) enrichOne(ctx context.Context, c *types.Citation) {
	for _, ex := range p.executors {
		result := ex.Run(ctx, c)
		p.resolveCountries(result)
		c.AddResult(result)
		for _, msg := range result.Errors {
			c.Errors = append(c.Errors, fmt.Sprintf("%s: %s", result.Source, msg))
		}
	}
}

// resolveCountries maps the matched candidate's raw country tokens to
// alpha-2 codes per author position. Unresolvable tokens are dropped.
func (p *Pipeline) resolveCountries(r *types.EnrichmentResult) {
	if r.Match == nil || len(r.Match.CountryTokens) == 0 {
		return
	}
	r.AuthorCountries = make([][]string, len(r.Match.CountryTokens))
	for i, tokens := range r.Match.CountryTokens {
		r.AuthorCountries[i] = p.tables.ResolveAll(tokens)
	}
}

func anyMatch(c *types.Citation) bool {
	for _, r := range c.Enrichment {
		if r.Matched() {
			return true
		}
	}
	return false
}
