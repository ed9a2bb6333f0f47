// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// --- VIAF.Plan ---

func TestVIAFPlanAuthorForms(t *testing.T) {
	queries := (&VIAF{}).Plan(articleCitation())

	if len(queries) != 2 {
		t.Fatalf("queries = %d, want 2", len(queries))
	}
	if queries[0].Strategy != "author-full" || queries[0].Value != `local.personalNames all "D'Arcy Thompson"` {
		t.Errorf("full-form query = %+v", queries[0])
	}
	if queries[1].Strategy != "author-short" || queries[1].Value != `local.personalNames all "Thompson, D."` {
		t.Errorf("short-form query = %+v", queries[1])
	}
}

func TestVIAFPlanStripsEmbeddedQuotes(t *testing.T) {
	c := &types.Citation{Authors: []types.AuthorName{{Full: `John "Jack" Smith`}}}

	queries := (&VIAF{}).Plan(c)
	if len(queries) != 1 {
		t.Fatalf("queries = %d, want 1", len(queries))
	}
	if queries[0].Value != `local.personalNames all "John Jack Smith"` {
		t.Errorf("query = %q", queries[0].Value)
	}
}

func TestVIAFPlanNoAuthors(t *testing.T) {
	c := &types.Citation{Title: "Anonymous Chronicle"}
	if queries := (&VIAF{}).Plan(c); len(queries) != 0 {
		t.Errorf("queries = %d, want 0", len(queries))
	}
}

// --- VIAF.Search ---

const sampleVIAFXML = `<?xml version="1.0" encoding="UTF-8"?>
<searchRetrieveResponse>
  <numberOfRecords>2</numberOfRecords>
  <records>
    <record>
      <recordData>
        <VIAFCluster>
          <viafID>44300643</viafID>
          <mainHeadings>
            <data><text>Thompson, D'Arcy Wentworth, 1860-1948</text></data>
            <data><text>Thompson, D'Arcy</text></data>
          </mainHeadings>
          <nationalityOfEntity>
            <data><text>GB</text></data>
            <data><text>XX</text></data>
          </nationalityOfEntity>
          <titles>
            <work><title>On growth and form</title></work>
            <work><title>A glossary of Greek birds</title></work>
          </titles>
        </VIAFCluster>
      </recordData>
    </record>
    <record>
      <recordData>
        <VIAFCluster>
          <viafID>99999999</viafID>
          <mainHeadings>
            <data><text>Thompson, David</text></data>
          </mainHeadings>
        </VIAFCluster>
      </recordData>
    </record>
  </records>
</searchRetrieveResponse>`

func TestVIAFSearch(t *testing.T) {
	var gotQuery, gotAccept, gotMax string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.URL.Query().Get("httpAccept")
		gotMax = r.URL.Query().Get("maximumRecords")
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleVIAFXML)
	}))
	defer ts.Close()

	old := viafSearchBase
	viafSearchBase = ts.URL
	defer func() { viafSearchBase = old }()

	v := &VIAF{Client: ts.Client(), MaxResults: 10}
	records, err := v.Search(context.Background(), v.Plan(articleCitation())[0])
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotQuery != `local.personalNames all "D'Arcy Thompson"` {
		t.Errorf("query param = %q", gotQuery)
	}
	if gotAccept != "application/xml" {
		t.Errorf("httpAccept = %q", gotAccept)
	}
	if gotMax != "10" {
		t.Errorf("maximumRecords = %q", gotMax)
	}

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	r := records[0]
	if r.ID != "44300643" {
		t.Errorf("id = %q", r.ID)
	}
	if len(r.Titles) != 2 || r.Titles[0] != "On growth and form" {
		t.Errorf("titles = %v", r.Titles)
	}
	if len(r.Authors) != 1 || r.Authors[0].Short != "Thompson, D'Arcy Wentworth, 1860-1948" {
		t.Errorf("authors = %v, want the first main heading", r.Authors)
	}
	// One author position carrying the raw nationality tokens; reserved
	// codes are resolved away later, not here.
	if len(r.CountryTokens) != 1 || len(r.CountryTokens[0]) != 2 {
		t.Fatalf("tokens = %v", r.CountryTokens)
	}
	if r.CountryTokens[0][0] != "GB" || r.CountryTokens[0][1] != "XX" {
		t.Errorf("tokens = %v", r.CountryTokens[0])
	}

	// Sparse cluster still yields a candidate with an author position.
	if records[1].ID != "99999999" || len(records[1].Titles) != 0 {
		t.Errorf("sparse record = %+v", records[1])
	}
	if len(records[1].CountryTokens) != 1 || len(records[1].CountryTokens[0]) != 0 {
		t.Errorf("sparse record tokens = %v", records[1].CountryTokens)
	}
}

func TestVIAFSearchServiceError(t *testing.T) {
	ts := jsonTestServer(http.StatusServiceUnavailable, "busy")
	defer ts.Close()

	old := viafSearchBase
	viafSearchBase = ts.URL
	defer func() { viafSearchBase = old }()

	v := &VIAF{Client: ts.Client()}
	_, err := v.Search(context.Background(), v.Plan(articleCitation())[0])

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
	if serviceErr.Source != "viaf" || serviceErr.Code != http.StatusServiceUnavailable {
		t.Errorf("service error = %+v", serviceErr)
	}
}

func TestVIAFSearchDecodeError(t *testing.T) {
	ts := jsonTestServer(http.StatusOK, `{"not": "xml"}`)
	defer ts.Close()

	old := viafSearchBase
	viafSearchBase = ts.URL
	defer func() { viafSearchBase = old }()

	v := &VIAF{Client: ts.Client()}
	_, err := v.Search(context.Background(), v.Plan(articleCitation())[0])

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}
