// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/affiliation-engine/internal/country"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [tokens...]",
	Short: "Resolve country tokens against the taxonomy tables",
	Long: `Resolve maps raw country tokens (alpha-2 codes, alpha-3 codes, names,
or aliases) to their canonical alpha-2 code and rank. Useful for checking
how source nationality data will resolve before running an enrichment.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("country-tables", "", "country taxonomy YAML overriding the embedded tables")
	resolveCmd.Flags().String("country-ranks", "", "region ranking YAML overriding the embedded table")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more country tokens")
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

	for _, token := range args {
		code, ok := tables.Resolve(token)
		if !ok {
			if country.Reserved(token) {
				fmt.Printf("%-30s reserved code, unresolved\n", token)
			} else {
				fmt.Printf("%-30s unresolved\n", token)
			}
			continue
		}
		name, _ := tables.Name(code)
		fmt.Printf("%-30s %s  %s  rank %d\n", token, code, name, ranks.Rank(code))
	}
	return nil
}
