// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/affiliation-engine/pkg/types"
)

// Store records enrichment runs in a SQLite database, one run per
// invocation with its citations and per-source results.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the run-results database at dbPath, creating
// the schema if it does not exist.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			citations INTEGER,
			matched INTEGER,
			attributed INTEGER,
			errored INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS citations (
			run_id INTEGER NOT NULL REFERENCES runs(rowid),
			id TEXT NOT NULL,
			title TEXT,
			type TEXT,
			winner_source TEXT,
			winner_countries TEXT,
			affiliation_index REAL,
			agreement INTEGER,
			errors TEXT,
			PRIMARY KEY (run_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL,
			citation_id TEXT NOT NULL,
			source TEXT NOT NULL,
			matched INTEGER,
			similarity INTEGER,
			identifier_match INTEGER,
			author_countries TEXT,
			attempts INTEGER,
			errors TEXT,
			PRIMARY KEY (run_id, citation_id, source),
			FOREIGN KEY (run_id, citation_id) REFERENCES citations(run_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_run ON citations(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun writes one run with all its citations inside a single
// transaction and returns the run's row ID.
func (s *Store) RecordRun(ctx context.Context, citations []*types.Citation) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	matched, attributed, errored := 0, 0, 0
	for _, c := range citations {
		if c.WinnerSource != "" {
			matched++
		}
		if len(c.WinnerCountries) > 0 {
			attributed++
		}
		if len(c.Errors) > 0 {
			errored++
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, citations, matched, attributed, errored)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), len(citations), matched, attributed, errored,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	citStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO citations (run_id, id, title, type, winner_source, winner_countries,
			affiliation_index, agreement, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing citation insert: %w", err)
	}
	defer citStmt.Close()

	resStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, citation_id, source, matched, similarity,
			identifier_match, author_countries, attempts, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing result insert: %w", err)
	}
	defer resStmt.Close()

	for _, c := range citations {
		var index any
		if c.AffiliationIndex != nil {
			index = *c.AffiliationIndex
		}
		var agreement any
		if c.Agreement != nil {
			agreement = *c.Agreement
		}
		_, err := citStmt.ExecContext(ctx,
			runID, c.ID, c.Title, string(c.Type), c.WinnerSource,
			strings.Join(c.WinnerCountries, "|"), index, agreement,
			strings.Join(c.Errors, "; "),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting citation %s: %w", c.ID, err)
		}

		for _, r := range c.Enrichment {
			var similarity any
			if r.Similarity != nil {
				similarity = *r.Similarity
			}
			countriesJSON, _ := json.Marshal(r.AuthorCountries)
			_, err := resStmt.ExecContext(ctx,
				runID, c.ID, r.Source, r.Matched(), similarity,
				r.IdentifierMatch, string(countriesJSON), len(r.Attempts),
				strings.Join(r.Errors, "; "),
			)
			if err != nil {
				return 0, fmt.Errorf("inserting result %s/%s: %w", c.ID, r.Source, err)
			}
		}
	}

	return runID, tx.Commit()
}
