// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile selects one winning source per citation from the
// per-source enrichment results and derives the two reported scores: the
// normalized affiliation index and the inter-source agreement percentage.
//
// See docs/ARCHITECTURE § Reconciliation.
package reconcile

import (
	"github.com/pdiddy/affiliation-engine/internal/country"
	"github.com/pdiddy/affiliation-engine/internal/vector"
	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// Reconciler applies the reconciliation policy and the rank table to
// finalized enrichment results.
type Reconciler struct {
	cfg   types.ReconcileConfig
	ranks *country.RankTable

	// agreementOrder fixes which two sources feed the agreement score:
	// the first two in this order with a non-empty nationality
	// distribution.
	agreementOrder []string
}

// New builds a Reconciler. Zero-valued policy fields fall back to the
// inherited defaults.
func New(cfg types.ReconcileConfig, ranks *country.RankTable) *Reconciler {
	def := types.DefaultReconcileConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if len(cfg.SerialOrder) == 0 {
		cfg.SerialOrder = def.SerialOrder
	}
	if len(cfg.FallbackOrder) == 0 {
		cfg.FallbackOrder = def.FallbackOrder
	}
	return &Reconciler{
		cfg:            cfg,
		ranks:          ranks,
		agreementOrder: cfg.SerialOrder,
	}
}

// Apply reconciles the citation's enrichment results and fills the winner
// and score fields. A citation with no eligible source is left without
// attribution.
func (r *Reconciler) Apply(c *types.Citation) {
	winner := r.selectWinner(c)
	if winner != nil {
		c.WinnerSource = winner.Source
		c.WinnerCountries = winner.Countries()
		c.AffiliationIndex = r.affiliationIndex(winner)
	}
	c.Agreement = r.agreement(c)
}

// selectWinner walks the type-dependent preference order. Among eligible
// sources, the first with non-empty resolved country data wins outright;
// failing that, the first eligible source is retained as a best-effort
// attribution without country data.
func (r *Reconciler) selectWinner(c *types.Citation) *types.EnrichmentResult {
	order := r.cfg.FallbackOrder
	if c.Type.IsSerial() {
		order = r.cfg.SerialOrder
	}

	var bestEffort *types.EnrichmentResult
	for _, source := range order {
		result := c.Result(source)
		if !r.eligible(result) {
			continue
		}
		if result.HasCountries() {
			return result
		}
		if bestEffort == nil {
			bestEffort = result
		}
	}
	return bestEffort
}

// eligible reports whether a source's result may be used: it must carry a
// match, and either meet the similarity inclusion threshold or stem from
// an identifier-exact search when the override is enabled.
func (r *Reconciler) eligible(result *types.EnrichmentResult) bool {
	if !result.Matched() {
		return false
	}
	if result.SimilarityOr(-1) >= r.cfg.Threshold {
		return true
	}
	return r.cfg.IdentifierOverride && result.IdentifierMatch
}

// affiliationIndex computes the normalized [0,1] affiliation score: per
// author position with resolved country data, the mean rank across the
// author's affiliations, summed and divided by maxRank times the number of
// contributing authors. Nil when no author has resolved country data.
func (r *Reconciler) affiliationIndex(result *types.EnrichmentResult) *float64 {
	sum := 0.0
	authors := 0
	for _, codes := range result.AuthorCountries {
		mean, ok := r.ranks.MeanRank(codes)
		if !ok {
			continue
		}
		sum += mean
		authors++
	}
	if authors == 0 {
		return nil
	}
	index := sum / (float64(r.ranks.MaxRank()) * float64(authors))
	return &index
}

// agreement scores how similar two independently derived nationality
// distributions are. It takes the first two sources in the fixed agreement
// order that produced a non-empty distribution; nil when fewer than two
// did.
func (r *Reconciler) agreement(c *types.Citation) *int {
	var dists []map[string]int
	for _, source := range r.agreementOrder {
		counts := c.Result(source).CountryCounts()
		if len(counts) == 0 {
			continue
		}
		dists = append(dists, counts)
		if len(dists) == 2 {
			break
		}
	}
	if len(dists) < 2 {
		return nil
	}

	score, err := vector.Agreement(dists[0], dists[1])
	if err != nil {
		return nil
	}
	return &score
}
