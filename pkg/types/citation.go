// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the affiliation-engine
// pipeline: the citation record, the per-source enrichment results attached
// to it, and the configuration blocks for each stage.
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// CitationType classifies a citation for source-preference decisions.
// Serial articles are best covered by abstract indexes; monographs and
// chapters by authority files.
type CitationType string

const (
	TypeArticle CitationType = "article"
	TypeBook    CitationType = "book"
	TypeChapter CitationType = "chapter"
	TypeOther   CitationType = "other"
)

// IsSerial reports whether the citation type is a journal-article-like type.
func (t CitationType) IsSerial() bool { return t == TypeArticle }

// ParseCitationType maps free-text type tags from the reading-list export
// onto the four canonical types. Unknown tags become TypeOther.
func ParseCitationType(s string) CitationType {
	switch CitationType(s) {
	case TypeArticle, TypeBook, TypeChapter:
		return CitationType(s)
	default:
		return TypeOther
	}
}

// AuthorName holds the representations of one author's name as different
// sources return them. Full is the collated "Given Family" form; Short is
// the indexed "Family, G." form. Either may be empty when a source only
// provides one representation.
type AuthorName struct {
	Full  string `json:"full,omitempty" yaml:"full,omitempty"`
	Short string `json:"short,omitempty" yaml:"short,omitempty"`
}

// Forms returns the non-empty representations of the name.
func (a AuthorName) Forms() []string {
	var forms []string
	if a.Full != "" {
		forms = append(forms, a.Full)
	}
	if a.Short != "" {
		forms = append(forms, a.Short)
	}
	return forms
}

// Citation is the unit of work: one reading-list entry with its base
// bibliographic metadata and the enrichment gathered for it.
//
// Base metadata is immutable after creation. Enrichment passes only append
// EnrichmentResult entries under Enrichment; the reconciliation pass fills
// the Winner* and score fields.
type Citation struct {
	// ID is the reading-list record identifier.
	ID string `json:"id" yaml:"id"`

	// Title is the citation title as extracted from the reading list.
	Title string `json:"title" yaml:"title"`

	// ShortTitle is the canonical shorter form of the title (text before a
	// subtitle separator), when the extraction step produced one.
	ShortTitle string `json:"short_title,omitempty" yaml:"short_title,omitempty"`

	// ContainerTitle is the journal or book the cited work appeared in.
	ContainerTitle string `json:"container_title,omitempty" yaml:"container_title,omitempty"`

	// Authors lists the citation authors in source order.
	Authors []AuthorName `json:"authors,omitempty" yaml:"authors,omitempty"`

	// DOI, ISBN and ISSN are the identifiers known for the citation, each
	// possibly empty.
	DOI  string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ISBN string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	ISSN string `json:"issn,omitempty" yaml:"issn,omitempty"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Type classifies the citation (article, book, chapter, other).
	Type CitationType `json:"type" yaml:"type"`

	// Enrichment holds one EnrichmentResult per source consulted, keyed by
	// source name. Entries are appended by each source's enrichment pass and
	// frozen when that pass completes.
	Enrichment map[string]*EnrichmentResult `json:"enrichment,omitempty" yaml:"enrichment,omitempty"`

	// WinnerSource names the source selected by reconciliation, empty when
	// no source was eligible.
	WinnerSource string `json:"winner_source,omitempty" yaml:"winner_source,omitempty"`

	// WinnerCountries are the resolved country codes of the winning source,
	// deduplicated, in first-seen order.
	WinnerCountries []string `json:"winner_countries,omitempty" yaml:"winner_countries,omitempty"`

	// AffiliationIndex is the normalized [0,1] affiliation score, nil when
	// no author of the winning source had resolved country data.
	AffiliationIndex *float64 `json:"affiliation_index,omitempty" yaml:"affiliation_index,omitempty"`

	// Agreement is the 0-100 inter-source nationality agreement score, nil
	// when fewer than two sources produced nationality data.
	Agreement *int `json:"agreement,omitempty" yaml:"agreement,omitempty"`

	// Errors collects per-citation failures that did not stop the batch.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Result returns the enrichment result for the named source, or nil.
func (c *Citation) Result(source string) *EnrichmentResult {
	if c.Enrichment == nil {
		return nil
	}
	return c.Enrichment[source]
}

// AddResult attaches a completed enrichment result to the citation.
func (c *Citation) AddResult(r *EnrichmentResult) {
	if c.Enrichment == nil {
		c.Enrichment = make(map[string]*EnrichmentResult)
	}
	c.Enrichment[r.Source] = r
}

// TitleVariants returns the known title forms, longest first: the collated
// title and, when present and different, the shorter canonical form.
func (c *Citation) TitleVariants() []string {
	variants := []string{}
	if c.Title != "" {
		variants = append(variants, c.Title)
	}
	if c.ShortTitle != "" && c.ShortTitle != c.Title {
		variants = append(variants, c.ShortTitle)
	}
	return variants
}

// SearchAttempt records a single query issued to a source: the strategy
// tier that produced it, the fully-formed query string, and the outcome.
// Attempts are append-only and never mutated after creation.
type SearchAttempt struct {
	// Strategy is the tier name (e.g. "doi-exact", "title-loose-author").
	Strategy string `json:"strategy" yaml:"strategy"`

	// Query is the fully-resolved query string sent to the source.
	Query string `json:"query" yaml:"query"`

	// Results is the raw result count returned, 0 on error.
	Results int `json:"results" yaml:"results"`

	// Cached reports whether the result came from the per-run query cache.
	Cached bool `json:"cached,omitempty" yaml:"cached,omitempty"`

	// Error holds the failure description when the tier failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// MatchCandidate is one result record from a source, reduced to the fields
// needed for scoring and export. It is owned by the EnrichmentResult that
// selected it.
type MatchCandidate struct {
	// ID is the source-side record identifier.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Titles lists every title form the record carries.
	Titles []string `json:"titles,omitempty" yaml:"titles,omitempty"`

	// Authors lists the record's authors in source order.
	Authors []AuthorName `json:"authors,omitempty" yaml:"authors,omitempty"`

	// CountryTokens holds the raw country/nationality tokens per author
	// position, before resolution. An author may carry several affiliations.
	CountryTokens [][]string `json:"country_tokens,omitempty" yaml:"country_tokens,omitempty"`

	// DOI is the record's DOI when the source returned one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// EnrichmentResult holds everything one source produced for one citation:
// the attempt log, the selected candidate, resolved authors and countries,
// and the similarity score that gates downstream use.
type EnrichmentResult struct {
	// Source names the source that produced this result.
	Source string `json:"source" yaml:"source"`

	// Attempts is the ordered log of strategy tiers issued.
	Attempts []SearchAttempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`

	// Match is the selected candidate, nil when no tier returned results or
	// no candidate was usable.
	Match *MatchCandidate `json:"match,omitempty" yaml:"match,omitempty"`

	// Similarity is the combined 0-100 candidate score, nil when absent.
	Similarity *int `json:"similarity,omitempty" yaml:"similarity,omitempty"`

	// IdentifierMatch reports whether the winning attempt was an
	// identifier-exact (DOI) search. Such matches bypass the similarity
	// inclusion threshold during reconciliation.
	IdentifierMatch bool `json:"identifier_match,omitempty" yaml:"identifier_match,omitempty"`

	// AuthorCountries holds the resolved 2-letter country codes per author
	// position of the matched record. Unresolvable tokens are dropped, so an
	// inner slice may be shorter than the raw token list or empty.
	AuthorCountries [][]string `json:"author_countries,omitempty" yaml:"author_countries,omitempty"`

	// Errors collects transport and data-shape failures from this pass.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Matched reports whether the source produced a usable candidate.
func (r *EnrichmentResult) Matched() bool { return r != nil && r.Match != nil }

// SimilarityOr returns the similarity score, or fallback when absent.
func (r *EnrichmentResult) SimilarityOr(fallback int) int {
	if r == nil || r.Similarity == nil {
		return fallback
	}
	return *r.Similarity
}

// Countries returns the resolved country codes across all author positions,
// deduplicated, in first-seen order.
func (r *EnrichmentResult) Countries() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	var codes []string
	for _, ac := range r.AuthorCountries {
		for _, code := range ac {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	return codes
}

// HasCountries reports whether any author position has resolved country data.
func (r *EnrichmentResult) HasCountries() bool {
	if r == nil {
		return false
	}
	for _, ac := range r.AuthorCountries {
		if len(ac) > 0 {
			return true
		}
	}
	return false
}

// CountryCounts returns the nationality frequency distribution: how many
// author-affiliation tokens resolved to each country code.
func (r *EnrichmentResult) CountryCounts() map[string]int {
	if r == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, ac := range r.AuthorCountries {
		for _, code := range ac {
			counts[code]++
		}
	}
	return counts
}
