// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/affiliation-engine/internal/enrich"
	"github.com/pdiddy/affiliation-engine/internal/httputil"
	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// viafSearchBase is the VIAF SRU search endpoint. Declared as a var so
// tests can substitute an httptest server.
var viafSearchBase = "https://viaf.org/viaf/search"

// VIAF queries the VIAF authority file over SRU. The query can only carry
// an author name, so clusters come back unranked for our purposes and the
// best-of-set discipline matches the citation title against each cluster's
// work titles client-side. Nationality tokens are a mix of alpha-2,
// alpha-3 and free-text values.
type VIAF struct {
	Client     *http.Client
	UserAgent  string
	MaxResults int
}

// Name returns the source identifier.
func (v *VIAF) Name() string { return "viaf" }

// Discipline returns the candidate-selection discipline.
func (v *VIAF) Discipline() enrich.Discipline { return enrich.BestOfSet }

// Plan emits the VIAF strategy cascade: the first author's full name form,
// then the short form. Title matching happens after retrieval.
func (v *VIAF) Plan(c *types.Citation) []enrich.Query {
	return enrich.Plan(c, []enrich.Tier{
		{
			Name: "author-full",
			Build: func(c *types.Citation) string {
				if len(c.Authors) == 0 || c.Authors[0].Full == "" {
					return ""
				}
				return viafCQL(c.Authors[0].Full)
			},
		},
		{
			Name: "author-short",
			Build: func(c *types.Citation) string {
				if len(c.Authors) == 0 || c.Authors[0].Short == "" {
					return ""
				}
				return viafCQL(c.Authors[0].Short)
			},
		},
	})
}

// viafCQL builds the SRU CQL query for a personal-name search.
func viafCQL(name string) string {
	return fmt.Sprintf(`local.personalNames all "%s"`, strings.ReplaceAll(name, `"`, ""))
}

// Search issues one SRU query and decodes the returned clusters.
func (v *VIAF) Search(ctx context.Context, q enrich.Query) ([]types.MatchCandidate, error) {
	maxResults := v.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}

	params := url.Values{
		"query":          {q.Value},
		"maximumRecords": {fmt.Sprintf("%d", maxResults)},
		"httpAccept":     {"application/xml"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, viafSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", v.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, v.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: viaf: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Source: "viaf", Code: resp.StatusCode}
	}

	var sr viafSearchResponse
	if err := xml.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &DecodeError{Source: "viaf", Err: err}
	}

	var candidates []types.MatchCandidate
	for _, record := range sr.Records {
		candidates = append(candidates, record.Cluster.toCandidate())
	}
	return candidates, nil
}

// VIAF SRU XML structures.
type viafSearchResponse struct {
	XMLName         xml.Name     `xml:"searchRetrieveResponse"`
	NumberOfRecords int          `xml:"numberOfRecords"`
	Records         []viafRecord `xml:"records>record"`
}

type viafRecord struct {
	Cluster viafCluster `xml:"recordData>VIAFCluster"`
}

type viafCluster struct {
	ViafID        string   `xml:"viafID"`
	MainHeadings  []string `xml:"mainHeadings>data>text"`
	Nationalities []string `xml:"nationalityOfEntity>data>text"`
	Titles        []string `xml:"titles>work>title"`
}

// toCandidate reduces a cluster to the shared candidate shape. A cluster
// describes one author, so there is exactly one author position carrying
// the cluster's nationality tokens.
func (cl viafCluster) toCandidate() types.MatchCandidate {
	cand := types.MatchCandidate{ID: cl.ViafID}

	for _, title := range cl.Titles {
		if t := strings.TrimSpace(title); t != "" {
			cand.Titles = append(cand.Titles, t)
		}
	}

	var name types.AuthorName
	if len(cl.MainHeadings) > 0 {
		name.Short = strings.TrimSpace(cl.MainHeadings[0])
	}
	cand.Authors = append(cand.Authors, name)

	var tokens []string
	for _, nat := range cl.Nationalities {
		if n := strings.TrimSpace(nat); n != "" {
			tokens = append(tokens, n)
		}
	}
	cand.CountryTokens = append(cand.CountryTokens, tokens)

	return cand
}
