// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "affiliation-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds per-source settings.
type SourceConfig struct {
	// Enabled controls whether the source is consulted.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Delay is the minimum inter-call delay enforced between physical
	// requests to this source (e.g. 100ms for OpenAlex, 700ms for VIAF).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// APIKey authenticates against the source, where required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email is sent with requests to sources that offer a polite pool.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// EnrichConfig holds settings for the enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps the result count requested from each source (default 25).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Scopus, OpenAlex and VIAF configure the three sources. Sources are
	// consulted in this fixed order for every citation.
	Scopus   SourceConfig `json:"scopus" yaml:"scopus"`
	OpenAlex SourceConfig `json:"openalex" yaml:"openalex"`
	VIAF     SourceConfig `json:"viaf" yaml:"viaf"`
}

// ReconcileConfig holds the reconciliation policy. The defaults preserve the
// inherited heuristics: threshold 80, identifier override on, abstract
// indexes preferred for serial articles and the authority file for
// everything else.
type ReconcileConfig struct {
	// Threshold is the minimum similarity score for a source's result to be
	// eligible (default 80).
	Threshold int `json:"threshold" yaml:"threshold"`

	// IdentifierOverride admits results whose winning search attempt was
	// identifier-exact regardless of the similarity threshold.
	IdentifierOverride bool `json:"identifier_override" yaml:"identifier_override"`

	// SerialOrder is the source preference order for journal-article-like
	// citations; FallbackOrder applies to every other type.
	SerialOrder   []string `json:"serial_order" yaml:"serial_order"`
	FallbackOrder []string `json:"fallback_order" yaml:"fallback_order"`
}

// CountryConfig holds settings for the country taxonomy tables.
type CountryConfig struct {
	// TablesPath points at a YAML taxonomy file overriding the embedded
	// tables. Empty means use the embedded defaults.
	TablesPath string `json:"tables_path,omitempty" yaml:"tables_path,omitempty"`

	// RanksPath points at a YAML ranking file overriding the embedded
	// ranked-region table. Empty means use the embedded defaults.
	RanksPath string `json:"ranks_path,omitempty" yaml:"ranks_path,omitempty"`
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// CSVPath is the tabular output file (default "enriched.csv").
	CSVPath string `json:"csv_path" yaml:"csv_path"`

	// YAMLPath, when set, receives the full citation structure.
	YAMLPath string `json:"yaml_path,omitempty" yaml:"yaml_path,omitempty"`

	// DBPath, when set, receives a SQLite database of the run's results.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Enrich    EnrichConfig    `json:"enrich" yaml:"enrich"`
	Reconcile ReconcileConfig `json:"reconcile" yaml:"reconcile"`
	Country   CountryConfig   `json:"country" yaml:"country"`
	Export    ExportConfig    `json:"export" yaml:"export"`
}

// DefaultReconcileConfig returns the inherited reconciliation policy.
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		Threshold:          80,
		IdentifierOverride: true,
		SerialOrder:        []string{"scopus", "openalex", "viaf"},
		FallbackOrder:      []string{"viaf", "scopus", "openalex"},
	}
}
