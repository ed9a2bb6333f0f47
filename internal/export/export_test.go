// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/affiliation-engine/pkg/types"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func sampleCitations() []*types.Citation {
	attributed := &types.Citation{
		ID:    "c1",
		Title: "Distributed Consensus in Practice",
		Type:  types.TypeArticle,
		Authors: []types.AuthorName{
			{Full: "Ada Lovelace", Short: "Lovelace, A."},
		},
		WinnerSource:     "scopus",
		WinnerCountries:  []string{"GB", "US"},
		AffiliationIndex: floatPtr(0.1282),
		Agreement:        intPtr(94),
	}
	attributed.AddResult(&types.EnrichmentResult{
		Source:          "scopus",
		Similarity:      intPtr(100),
		IdentifierMatch: true,
		Match:           &types.MatchCandidate{ID: "s-1"},
		AuthorCountries: [][]string{{"GB"}, {"US"}},
		Attempts:        []types.SearchAttempt{{Strategy: "doi-exact", Results: 1}},
	})
	attributed.AddResult(&types.EnrichmentResult{
		Source:   "openalex",
		Attempts: []types.SearchAttempt{{Strategy: "title-only"}},
		Errors:   []string{"openalex: status 503"},
	})

	unmatched := &types.Citation{
		ID:    "c2",
		Title: "An Obscure Monograph",
		Type:  types.TypeBook,
	}

	return []*types.Citation{attributed, unmatched}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleCitations()); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if len(rows[0]) != len(csvHeader) {
		t.Fatalf("header width = %d, want %d", len(rows[0]), len(csvHeader))
	}

	row := rows[1]
	checks := map[string]string{
		"id":                "c1",
		"winner_source":     "scopus",
		"countries":         "GB|US",
		"similarity":        "100",
		"identifier_match":  "true",
		"affiliation_index": "0.1282",
		"agreement":         "94",
		"sources_matched":   "1",
		"attempts":          "2",
	}
	for col, want := range checks {
		got := row[columnIndex(t, col)]
		if got != want {
			t.Errorf("column %s = %q, want %q", col, got, want)
		}
	}
}

func TestWriteCSVUnmatchedRow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleCitations()); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	row := rows[2]
	if row[columnIndex(t, "id")] != "c2" {
		t.Fatalf("id = %q, want c2", row[0])
	}
	for _, col := range []string{"winner_source", "countries", "similarity", "affiliation_index", "agreement"} {
		if got := row[columnIndex(t, col)]; got != "" {
			t.Errorf("column %s = %q, want empty", col, got)
		}
	}
}

func columnIndex(t *testing.T, name string) int {
	t.Helper()
	for i, col := range csvHeader {
		if col == name {
			return i
		}
	}
	t.Fatalf("unknown column %s", name)
	return -1
}

func TestWriteYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	if err := WriteYAMLFile(path, sampleCitations()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var loaded []*types.Citation
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d citations, want 2", len(loaded))
	}
	if loaded[0].WinnerSource != "scopus" {
		t.Errorf("winner = %q, want scopus", loaded[0].WinnerSource)
	}
	if r := loaded[0].Result("scopus"); r == nil || !r.IdentifierMatch {
		t.Error("scopus result lost identifier match flag")
	}
}

func TestStoreRecordRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	runID, err := store.RecordRun(context.Background(), sampleCitations())
	if err != nil {
		t.Fatal(err)
	}
	if runID == 0 {
		t.Fatal("run id not assigned")
	}

	var citations, matched, attributed int
	err = store.db.QueryRow(
		`SELECT citations, matched, attributed FROM runs WHERE rowid = ?`, runID,
	).Scan(&citations, &matched, &attributed)
	if err != nil {
		t.Fatal(err)
	}
	if citations != 2 || matched != 1 || attributed != 1 {
		t.Errorf("run counts = (%d, %d, %d), want (2, 1, 1)", citations, matched, attributed)
	}

	var winner string
	var index sql.NullFloat64
	err = store.db.QueryRow(
		`SELECT winner_source, affiliation_index FROM citations WHERE run_id = ? AND id = 'c1'`, runID,
	).Scan(&winner, &index)
	if err != nil {
		t.Fatal(err)
	}
	if winner != "scopus" || !index.Valid {
		t.Errorf("citation row = (%q, %v), want scopus with index", winner, index)
	}

	var results int
	if err := store.db.QueryRow(
		`SELECT count(*) FROM results WHERE run_id = ?`, runID,
	).Scan(&results); err != nil {
		t.Fatal(err)
	}
	if results != 2 {
		t.Errorf("results = %d, want 2", results)
	}
}

func TestStoreSecondRunIsolated(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	first, err := store.RecordRun(context.Background(), sampleCitations())
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.RecordRun(context.Background(), sampleCitations())
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatal("second run reused run id")
	}

	var rows int
	if err := store.db.QueryRow(`SELECT count(*) FROM citations`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 4 {
		t.Errorf("citation rows = %d, want 4", rows)
	}
}
