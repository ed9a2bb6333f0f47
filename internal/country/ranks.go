// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package country

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

//go:embed data/ranks.yaml
var defaultRanksYAML []byte

// ranksFile is the on-disk YAML shape of the ranked-region table.
type ranksFile struct {
	MaxRank int            `yaml:"max_rank"`
	Ranks   map[string]int `yaml:"ranks"`
}

// RankTable maps alpha-2 country codes to a numeric economic rank
// (1 = highest). Codes absent from the table take MaxRank.
type RankTable struct {
	ranks   map[string]int
	maxRank int
}

// LoadRanks reads a ranking YAML file. An empty path loads the embedded
// default table.
func LoadRanks(path string) (*RankTable, error) {
	data := defaultRanksYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rank table: %w", err)
		}
	}

	var rf ranksFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rank table: %w", err)
	}
	if rf.MaxRank <= 0 {
		return nil, fmt.Errorf("rank table: max_rank must be positive")
	}
	for code, rank := range rf.Ranks {
		if rank <= 0 || rank > rf.MaxRank {
			return nil, fmt.Errorf("rank table: rank %d for %s outside [1,%d]", rank, code, rf.MaxRank)
		}
	}

	return &RankTable{ranks: rf.Ranks, maxRank: rf.MaxRank}, nil
}

// NewRankTable builds a table from explicit values, for tests and custom
// rankings.
func NewRankTable(ranks map[string]int, maxRank int) *RankTable {
	return &RankTable{ranks: ranks, maxRank: maxRank}
}

// Rank returns the rank for an alpha-2 code, or MaxRank when the code is
// not listed.
func (rt *RankTable) Rank(code string) int {
	if r, ok := rt.ranks[code]; ok {
		return r
	}
	return rt.maxRank
}

// MaxRank returns the table's maximum rank.
func (rt *RankTable) MaxRank() int { return rt.maxRank }

// MeanRank returns the mean rank across a set of codes, or 0 with ok ==
// false when the set is empty.
func (rt *RankTable) MeanRank(codes []string) (float64, bool) {
	if len(codes) == 0 {
		return 0, false
	}
	sum := 0
	for _, code := range codes {
		sum += rt.Rank(code)
	}
	return float64(sum) / float64(len(codes)), true
}
