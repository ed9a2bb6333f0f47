// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export flattens finalized citations into tabular CSV rows,
// writes the full structure to YAML, and optionally records a run's
// results in a SQLite database.
//
// See docs/ARCHITECTURE § Export.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// csvHeader lists the flattened columns, one row per citation.
var csvHeader = []string{
	"id", "title", "type", "winner_source", "countries",
	"similarity", "identifier_match", "affiliation_index", "agreement",
	"sources_matched", "attempts", "errors",
}

// WriteCSV flattens every citation to one row. Citations without a winner
// are exported with empty attribution columns, never dropped.
func WriteCSV(w io.Writer, citations []*types.Citation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, c := range citations {
		if err := writer.Write(csvRow(c)); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", c.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the flattened rows to path.
func WriteCSVFile(path string, citations []*types.Citation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, citations)
}

// WriteYAMLFile writes the full citation structure, enrichment results
// included, to path.
func WriteYAMLFile(path string, citations []*types.Citation) error {
	data, err := yaml.Marshal(citations)
	if err != nil {
		return fmt.Errorf("marshaling citations: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func csvRow(c *types.Citation) []string {
	similarity := ""
	identifierMatch := ""
	if winner := c.Result(c.WinnerSource); winner != nil {
		if winner.Similarity != nil {
			similarity = strconv.Itoa(*winner.Similarity)
		}
		identifierMatch = strconv.FormatBool(winner.IdentifierMatch)
	}

	index := ""
	if c.AffiliationIndex != nil {
		index = strconv.FormatFloat(*c.AffiliationIndex, 'f', 4, 64)
	}
	agreement := ""
	if c.Agreement != nil {
		agreement = strconv.Itoa(*c.Agreement)
	}

	matched := 0
	attempts := 0
	for _, r := range c.Enrichment {
		if r.Matched() {
			matched++
		}
		attempts += len(r.Attempts)
	}

	return []string{
		c.ID,
		c.Title,
		string(c.Type),
		c.WinnerSource,
		strings.Join(c.WinnerCountries, "|"),
		similarity,
		identifierMatch,
		index,
		agreement,
		strconv.Itoa(matched),
		strconv.Itoa(attempts),
		strings.Join(c.Errors, "; "),
	}
}
