// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vector scores the agreement of two frequency distributions over a
// shared category dictionary via cosine similarity of L2-normalized vectors.
package vector

import (
	"fmt"
	"math"
	"sort"
)

// ErrEmptyDistribution is returned when a distribution carries no mass and
// therefore cannot be normalized.
var ErrEmptyDistribution = fmt.Errorf("empty distribution")

// Agreement converts the two distributions into frequency vectors over the
// union dictionary of their categories, L2-normalizes both, and returns
// floor(100 * dot-product) as an agreement percentage. Identical
// distributions up to scaling score 100. A distribution with zero total
// mass is rejected with ErrEmptyDistribution.
func Agreement(a, b map[string]int) (int, error) {
	if total(a) == 0 || total(b) == 0 {
		return 0, ErrEmptyDistribution
	}

	dict := unionDictionary(a, b)
	va := toVector(a, dict)
	vb := toVector(b, dict)
	normalize(va)
	normalize(vb)

	dot := 0.0
	for i := range va {
		dot += va[i] * vb[i]
	}
	// Floating-point noise can push a perfect match a hair above 1.
	if dot > 1 {
		dot = 1
	}
	return int(math.Floor(100 * dot)), nil
}

// unionDictionary returns the sorted union of category keys. Sorting keeps
// vector layout deterministic across runs.
func unionDictionary(a, b map[string]int) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var dict []string
	for k := range a {
		if !seen[k] {
			seen[k] = true
			dict = append(dict, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			dict = append(dict, k)
		}
	}
	sort.Strings(dict)
	return dict
}

func toVector(dist map[string]int, dict []string) []float64 {
	v := make([]float64, len(dict))
	for i, k := range dict {
		v[i] = float64(dist[k])
	}
	return v
}

func normalize(v []float64) {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}

func total(dist map[string]int) int {
	sum := 0
	for _, n := range dist {
		if n > 0 {
			sum += n
		}
	}
	return sum
}
