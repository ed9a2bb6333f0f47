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

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex Works API. Results are relevance-ranked by
// the service, so the first-result discipline applies. Institutions carry
// alpha-2 country codes per authorship.
type OpenAlex struct {
	Client *http.Client
	// Email is sent as the mailto parameter for polite pool access.
	Email      string
	UserAgent  string
	MaxResults int
}

// Name returns the source identifier.
func (o *OpenAlex) Name() string { return "openalex" }

// Discipline returns the candidate-selection discipline.
func (o *OpenAlex) Discipline() enrich.Discipline { return enrich.FirstResult }

// Plan emits the OpenAlex strategy cascade. OpenAlex has no exactness
// operator beyond the title filter, so the cascade narrows by dropping the
// author constraint.
func (o *OpenAlex) Plan(c *types.Citation) []enrich.Query {
	return enrich.Plan(c, []enrich.Tier{
		{
			Name:       "doi-exact",
			Identifier: true,
			Build: func(c *types.Citation) string {
				doi := enrich.NormalizeDOI(c.DOI)
				if doi == "" {
					return ""
				}
				return "filter=doi:https://doi.org/" + doi
			},
		},
		{
			Name: "title-author",
			Build: func(c *types.Citation) string {
				author := firstAuthorForm(c)
				if c.Title == "" || author == "" {
					return ""
				}
				return fmt.Sprintf("filter=title.search:%s,raw_author_name.search:%s",
					escapeOpenAlexFilter(c.Title), escapeOpenAlexFilter(author))
			},
		},
		{
			Name: "title-only",
			Build: func(c *types.Citation) string {
				if c.Title == "" {
					return ""
				}
				return "filter=title.search:" + escapeOpenAlexFilter(c.Title)
			},
		},
	})
}

// escapeOpenAlexFilter strips the characters that delimit OpenAlex filter
// expressions.
func escapeOpenAlexFilter(s string) string {
	return strings.NewReplacer(",", " ", ":", " ").Replace(s)
}

func firstAuthorForm(c *types.Citation) string {
	for _, a := range c.Authors {
		for _, form := range a.Forms() {
			return form
		}
	}
	return ""
}

// Search issues one query and decodes the works list.
func (o *OpenAlex) Search(ctx context.Context, q enrich.Query) ([]types.MatchCandidate, error) {
	maxResults := o.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}

	// The query value is a pre-built filter expression.
	filter := strings.TrimPrefix(q.Value, "filter=")
	params := url.Values{
		"filter":   {filter},
		"per_page": {fmt.Sprintf("%d", maxResults)},
		"page":     {"1"},
	}
	if o.Email != "" {
		params.Set("mailto", o.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexWorksBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", o.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, o.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: openalex: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Source: "openalex", Code: resp.StatusCode}
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, &DecodeError{Source: "openalex", Err: err}
	}

	var candidates []types.MatchCandidate
	for _, work := range oar.Results {
		candidates = append(candidates, work.toCandidate())
	}
	return candidates, nil
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	DOI         string               `json:"doi"`
	Authorships []openAlexAuthorship `json:"authorships"`
}

type openAlexAuthorship struct {
	Author       openAlexAuthor        `json:"author"`
	RawName      string                `json:"raw_author_name"`
	Institutions []openAlexInstitution `json:"institutions"`
	Countries    []string              `json:"countries"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexInstitution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
}

// toCandidate reduces a work to the shared candidate shape. Country tokens
// come from the authorship countries list, falling back to institution
// country codes.
func (w openAlexWork) toCandidate() types.MatchCandidate {
	cand := types.MatchCandidate{
		ID:  w.ID,
		DOI: strings.TrimPrefix(w.DOI, "https://doi.org/"),
	}
	if w.Title != "" {
		cand.Titles = append(cand.Titles, w.Title)
	}

	for _, authorship := range w.Authorships {
		name := types.AuthorName{Full: authorship.Author.DisplayName}
		if name.Full == "" {
			name.Full = authorship.RawName
		}
		cand.Authors = append(cand.Authors, name)

		tokens := append([]string(nil), authorship.Countries...)
		if len(tokens) == 0 {
			for _, inst := range authorship.Institutions {
				if inst.CountryCode != "" {
					tokens = append(tokens, inst.CountryCode)
				}
			}
		}
		cand.CountryTokens = append(cand.CountryTokens, tokens)
	}

	return cand
}
