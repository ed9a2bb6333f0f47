// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/affiliation-engine/internal/enrich"
	"github.com/pdiddy/affiliation-engine/internal/httputil"
	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// scopusSearchBase is the Scopus Search API endpoint. Declared as a var so
// tests can substitute an httptest server.
var scopusSearchBase = "https://api.elsevier.com/content/search/scopus"

// Scopus queries the Scopus Search API. Results come back pre-ranked, so
// the first-result discipline applies.
type Scopus struct {
	Client *http.Client
	APIKey string
	// UserAgent is sent with every request.
	UserAgent string
	// MaxResults caps the per-query result count.
	MaxResults int
}

// Name returns the source identifier.
func (s *Scopus) Name() string { return "scopus" }

// Discipline returns the candidate-selection discipline.
func (s *Scopus) Discipline() enrich.Discipline { return enrich.FirstResult }

// Plan emits the Scopus strategy cascade, most-constrained tier first:
// DOI-exact, then exact-title combinations, then loose-title combinations.
func (s *Scopus) Plan(c *types.Citation) []enrich.Query {
	return enrich.Plan(c, []enrich.Tier{
		{
			Name:       "doi-exact",
			Identifier: true,
			Build: func(c *types.Citation) string {
				doi := enrich.NormalizeDOI(c.DOI)
				if doi == "" {
					return ""
				}
				return fmt.Sprintf("DOI(%q)", doi)
			},
		},
		{
			Name: "title-exact-author-type-issn",
			Build: func(c *types.Citation) string {
				return scopusQuery(c, true, true, true, true)
			},
		},
		{
			Name: "title-exact-author-or-issn",
			Build: func(c *types.Citation) string {
				return scopusQueryAnyOf(c, true)
			},
		},
		{
			Name: "title-loose-type-issn",
			Build: func(c *types.Citation) string {
				return scopusQuery(c, false, false, true, true)
			},
		},
		{
			Name: "title-loose-author-or-issn",
			Build: func(c *types.Citation) string {
				return scopusQueryAnyOf(c, false)
			},
		},
	})
}

// scopusQuery builds a conjunctive query. Every requested clause must be
// constructible from the citation, otherwise the tier is suppressed.
func scopusQuery(c *types.Citation, exactTitle, withAuthor, withType, withISSN bool) string {
	title := scopusTitleClause(c, exactTitle)
	if title == "" {
		return ""
	}
	clauses := []string{title}

	if withAuthor {
		author := scopusAuthorClause(c)
		if author == "" {
			return ""
		}
		clauses = append(clauses, author)
	}
	if withType {
		doctype := scopusTypeClause(c)
		if doctype == "" {
			return ""
		}
		clauses = append(clauses, doctype)
	}
	if withISSN {
		issn := enrich.NormalizeISSN(c.ISSN)
		if issn == "" {
			return ""
		}
		clauses = append(clauses, fmt.Sprintf("ISSN(%s)", issn))
	}
	return strings.Join(clauses, " AND ")
}

// scopusQueryAnyOf builds "title AND (author OR issn)", requiring the
// title and at least one of the two discriminators.
func scopusQueryAnyOf(c *types.Citation, exactTitle bool) string {
	title := scopusTitleClause(c, exactTitle)
	if title == "" {
		return ""
	}
	var any []string
	if author := scopusAuthorClause(c); author != "" {
		any = append(any, author)
	}
	if issn := enrich.NormalizeISSN(c.ISSN); issn != "" {
		any = append(any, fmt.Sprintf("ISSN(%s)", issn))
	}
	if len(any) == 0 {
		return ""
	}
	return title + " AND (" + strings.Join(any, " OR ") + ")"
}

func scopusTitleClause(c *types.Citation, exact bool) string {
	if c.Title == "" {
		return ""
	}
	field := "TITLE"
	if !exact {
		field = "TITLE-ABS-KEY"
	}
	return fmt.Sprintf("%s(%q)", field, c.Title)
}

func scopusAuthorClause(c *types.Citation) string {
	for _, a := range c.Authors {
		for _, form := range a.Forms() {
			return fmt.Sprintf("AUTH(%q)", form)
		}
	}
	return ""
}

func scopusTypeClause(c *types.Citation) string {
	switch c.Type {
	case types.TypeArticle:
		return "DOCTYPE(ar)"
	case types.TypeBook:
		return "DOCTYPE(bk)"
	case types.TypeChapter:
		return "DOCTYPE(ch)"
	default:
		return ""
	}
}

// Search issues one query and decodes the COMPLETE-view result entries.
func (s *Scopus) Search(ctx context.Context, q enrich.Query) ([]types.MatchCandidate, error) {
	maxResults := s.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}

	params := url.Values{
		"query": {q.Value},
		"count": {fmt.Sprintf("%d", maxResults)},
		"view":  {"COMPLETE"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scopusSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("X-ELS-APIKey", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: scopus: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Source: "scopus", Code: resp.StatusCode}
	}

	var sr scopusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &DecodeError{Source: "scopus", Err: err}
	}

	var candidates []types.MatchCandidate
	for _, entry := range sr.SearchResults.Entries {
		// Scopus pads empty result sets with an error entry.
		if entry.Error != "" {
			continue
		}
		candidates = append(candidates, entry.toCandidate())
	}
	return candidates, nil
}

// Scopus Search API JSON structures (COMPLETE view).
type scopusResponse struct {
	SearchResults scopusSearchResults `json:"search-results"`
}

type scopusSearchResults struct {
	TotalResults string        `json:"opensearch:totalResults"`
	Entries      []scopusEntry `json:"entry"`
}

type scopusEntry struct {
	Error        string              `json:"error,omitempty"`
	Identifier   string              `json:"dc:identifier"`
	Title        string              `json:"dc:title"`
	Creator      string              `json:"dc:creator"`
	DOI          string              `json:"prism:doi"`
	Authors      []scopusAuthor      `json:"author"`
	Affiliations []scopusAffiliation `json:"affiliation"`
}

type scopusAuthor struct {
	AuthName  string            `json:"authname"`
	GivenName string            `json:"given-name"`
	Surname   string            `json:"surname"`
	AfIDs     []scopusAfIDEntry `json:"afid"`
}

type scopusAfIDEntry struct {
	ID string `json:"$"`
}

type scopusAffiliation struct {
	AfID    string `json:"afid"`
	Name    string `json:"affilname"`
	Country string `json:"affiliation-country"`
}

// toCandidate reduces an entry to the shared candidate shape, resolving
// each author's affiliation references to country tokens.
func (e scopusEntry) toCandidate() types.MatchCandidate {
	countryByAfID := make(map[string]string, len(e.Affiliations))
	for _, aff := range e.Affiliations {
		if aff.Country != "" {
			countryByAfID[aff.AfID] = aff.Country
		}
	}

	cand := types.MatchCandidate{
		ID:  e.Identifier,
		DOI: e.DOI,
	}
	if e.Title != "" {
		cand.Titles = append(cand.Titles, e.Title)
	}

	for _, a := range e.Authors {
		name := types.AuthorName{Short: a.AuthName}
		if a.GivenName != "" || a.Surname != "" {
			name.Full = strings.TrimSpace(a.GivenName + " " + a.Surname)
		}
		cand.Authors = append(cand.Authors, name)

		var tokens []string
		for _, af := range a.AfIDs {
			if country, ok := countryByAfID[af.ID]; ok {
				tokens = append(tokens, country)
			}
		}
		cand.CountryTokens = append(cand.CountryTokens, tokens)
	}

	// Entries without an author array still carry the first creator.
	if len(cand.Authors) == 0 && e.Creator != "" {
		cand.Authors = append(cand.Authors, types.AuthorName{Short: e.Creator})
		var tokens []string
		for _, aff := range e.Affiliations {
			if aff.Country != "" {
				tokens = append(tokens, aff.Country)
			}
		}
		cand.CountryTokens = append(cand.CountryTokens, tokens)
	}

	return cand
}
