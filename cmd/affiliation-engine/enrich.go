// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/affiliation-engine/internal/country"
	"github.com/pdiddy/affiliation-engine/internal/enrich"
	"github.com/pdiddy/affiliation-engine/internal/export"
	"github.com/pdiddy/affiliation-engine/internal/readinglist"
	"github.com/pdiddy/affiliation-engine/internal/reconcile"
	"github.com/pdiddy/affiliation-engine/internal/sources"
	"github.com/pdiddy/affiliation-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "affiliation-engine/0.1"

	defaultScopusDelay   = 200 * time.Millisecond
	defaultOpenAlexDelay = 100 * time.Millisecond
	defaultVIAFDelay     = 700 * time.Millisecond
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich reading-list citations with author country affiliations",
	Long: `Enrich loads a reading list (CSV or YAML), searches each citation
against the enabled sources through tiered query cascades, reconciles the
per-source matches into one winning country attribution, and writes the
results as CSV. The full citation structure and a per-run SQLite database
are written when requested.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("input", "", "reading-list file (.csv or .yaml) (required)")
	enrichCmd.Flags().String("output", "enriched.csv", "tabular output file")
	enrichCmd.Flags().String("yaml", "", "write the full citation structure to this YAML file")
	enrichCmd.Flags().String("db", "", "record the run in this SQLite database")
	enrichCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	enrichCmd.Flags().Int("max-results", 25, "maximum results requested per query")
	enrichCmd.Flags().Int("threshold", 0, "similarity threshold for source eligibility (default 80)")
	enrichCmd.Flags().Bool("no-identifier-override", false, "do not let DOI-exact matches bypass the threshold")
	enrichCmd.Flags().Bool("no-scopus", false, "skip the Scopus source")
	enrichCmd.Flags().Bool("no-openalex", false, "skip the OpenAlex source")
	enrichCmd.Flags().Bool("no-viaf", false, "skip the VIAF source")
	enrichCmd.Flags().String("scopus-api-key", "", "Scopus API key (default: .secrets/scopus-api-key)")
	enrichCmd.Flags().String("openalex-email", "", "OpenAlex polite-pool email (default: .secrets/openalex-email)")
	enrichCmd.Flags().String("country-tables", "", "country taxonomy YAML overriding the embedded tables")
	enrichCmd.Flags().String("country-ranks", "", "region ranking YAML overriding the embedded table")
	enrichCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	yamlPath, _ := cmd.Flags().GetString("yaml")
	dbPath, _ := cmd.Flags().GetString("db")

	citations, err := readinglist.Load(input)
	if err != nil {
		return fmt.Errorf("loading reading list: %w", err)
	}
	if len(citations) == 0 {
		return fmt.Errorf("reading list %s contains no citations", input)
	}

	tablesPath, _ := cmd.Flags().GetString("country-tables")
	ranksPath, _ := cmd.Flags().GetString("country-ranks")
	tables, err := country.LoadTables(tablesPath)
	if err != nil {
		return fmt.Errorf("loading country tables: %w", err)
	}
	ranks, err := country.LoadRanks(ranksPath)
	if err != nil {
		return fmt.Errorf("loading region ranks: %w", err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	executors, err := buildExecutors(cmd, client, maxResults)
	if err != nil {
		return err
	}

	threshold, _ := cmd.Flags().GetInt("threshold")
	noOverride, _ := cmd.Flags().GetBool("no-identifier-override")
	cfg := types.DefaultReconcileConfig()
	if threshold > 0 {
		cfg.Threshold = threshold
	}
	cfg.IdentifierOverride = !noOverride

	pipeline := enrich.NewPipeline(executors, tables, reconcile.New(cfg, ranks))
	summary, err := pipeline.Run(cmd.Context(), citations, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\ncitations: %d, matched: %d, attributed: %d, errored: %d\n",
		summary.Citations, summary.Matched, summary.Attributed, summary.Errored)

	if err := export.WriteCSVFile(output, citations); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)

	if yamlPath != "" {
		if err := export.WriteYAMLFile(yamlPath, citations); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", yamlPath)
	}

	if dbPath != "" {
		store, err := export.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.RecordRun(cmd.Context(), citations); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		fmt.Printf("recorded run in %s\n", dbPath)
	}

	return nil
}

// buildExecutors assembles the enabled sources in consultation order.
func buildExecutors(cmd *cobra.Command, client *http.Client, maxResults int) ([]*enrich.Executor, error) {
	noScopus, _ := cmd.Flags().GetBool("no-scopus")
	noOpenAlex, _ := cmd.Flags().GetBool("no-openalex")
	noVIAF, _ := cmd.Flags().GetBool("no-viaf")

	var executors []*enrich.Executor

	if !noScopus {
		apiKey, _ := cmd.Flags().GetString("scopus-api-key")
		apiKey = secretDefault("scopus-api-key", apiKey)
		if apiKey == "" {
			return nil, fmt.Errorf("scopus requires an API key; pass --scopus-api-key, add .secrets/scopus-api-key, or disable with --no-scopus")
		}
		executors = append(executors, enrich.NewExecutor(&sources.Scopus{
			Client:     client,
			APIKey:     apiKey,
			UserAgent:  defaultUserAgent,
			MaxResults: maxResults,
		}, defaultScopusDelay))
	}

	if !noOpenAlex {
		email, _ := cmd.Flags().GetString("openalex-email")
		executors = append(executors, enrich.NewExecutor(&sources.OpenAlex{
			Client:     client,
			Email:      secretDefault("openalex-email", email),
			UserAgent:  defaultUserAgent,
			MaxResults: maxResults,
		}, defaultOpenAlexDelay))
	}

	if !noVIAF {
		executors = append(executors, enrich.NewExecutor(&sources.VIAF{
			Client:     client,
			UserAgent:  defaultUserAgent,
			MaxResults: maxResults,
		}, defaultVIAFDelay))
	}

	if len(executors) == 0 {
		return nil, fmt.Errorf("all sources disabled; enable at least one")
	}
	return executors, nil
}
