// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package readinglist loads base citation records from the reading-list
// platform's CSV export or from a YAML file. The extraction step that
// produces these files is upstream of the engine; this package only parses
// its finished output.
package readinglist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/affiliation-engine/internal/enrich"
	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// csvColumns is the expected CSV header, in order.
var csvColumns = []string{
	"id", "title", "short_title", "container_title", "authors",
	"doi", "isbn", "issn", "year", "type",
}

// Load reads citations from path, dispatching on the file extension:
// .yaml/.yml for YAML, anything else for CSV.
func Load(path string) ([]*types.Citation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reading list: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return ReadYAML(f)
	}
	return ReadCSV(f)
}

// ReadCSV parses the platform's CSV export. The header row is validated
// against the expected column set; rows with a missing title are rejected
// because every search strategy needs one.
func ReadCSV(r io.Reader) ([]*types.Citation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, col := range csvColumns {
		if i >= len(header) || strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("unexpected CSV header: want columns %v", csvColumns)
		}
	}

	var citations []*types.Citation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		c, err := fromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		citations = append(citations, c)
	}
	return citations, nil
}

// ReadYAML parses a YAML citation list.
func ReadYAML(r io.Reader) ([]*types.Citation, error) {
	var citations []*types.Citation
	if err := yaml.NewDecoder(r).Decode(&citations); err != nil {
		return nil, fmt.Errorf("parsing YAML reading list: %w", err)
	}
	for _, c := range citations {
		if c.Title == "" {
			return nil, fmt.Errorf("citation %q: missing title", c.ID)
		}
	}
	return citations, nil
}

func fromRecord(record []string) (*types.Citation, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	title := record[1]
	if title == "" {
		return nil, fmt.Errorf("missing title")
	}

	c := &types.Citation{
		ID:             record[0],
		Title:          title,
		ShortTitle:     record[2],
		ContainerTitle: record[3],
		Authors:        parseAuthors(record[4]),
		DOI:            enrich.NormalizeDOI(record[5]),
		ISBN:           enrich.NormalizeISBN(record[6]),
		ISSN:           enrich.NormalizeISSN(record[7]),
		Type:           types.ParseCitationType(record[9]),
	}

	if record[8] != "" {
		year, err := strconv.Atoi(record[8])
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", record[8])
		}
		c.Year = year
	}

	return c, nil
}

// parseAuthors splits the semicolon-separated author field. Entries in
// "Family, Given" form keep that as the short form and gain a collated
// "Given Family" full form; entries without a comma are taken as collated
// already.
func parseAuthors(field string) []types.AuthorName {
	var authors []types.AuthorName
	for _, raw := range strings.Split(field, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		authors = append(authors, ParseAuthor(raw))
	}
	return authors
}

// ParseAuthor derives both name forms from one raw author string.
func ParseAuthor(raw string) types.AuthorName {
	if family, given, ok := strings.Cut(raw, ","); ok {
		family = strings.TrimSpace(family)
		given = strings.TrimSpace(given)
		name := types.AuthorName{Short: family + ", " + given}
		if given != "" {
			name.Full = given + " " + family
		} else {
			name.Full = family
		}
		return name
	}
	return types.AuthorName{Full: raw}
}
