// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity scores the closeness of two text strings on a 0-100
// scale using edit distance over normalized text. Every match decision in
// the pipeline (candidate selection, inclusion gating) goes through Score.
package similarity

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// punctReplacer maps the stripped punctuation class to spaces.
var punctReplacer = strings.NewReplacer(
	".", " ", ",", " ", "-", " ", "_", " ", ";", " ", ":", " ",
	"/", " ", `\`, " ", "'", " ", `"`, " ", "?", " ", "!", " ",
	"+", " ", "&", " ",
)

// Options modify the input before distance computation.
type Options struct {
	// TruncateAt keeps only the text before the first occurrence of the
	// separator, applied independently to each side. Titles with subtitles
	// after a colon compare more fairly against shorter forms this way.
	TruncateAt rune

	// SortWords splits on whitespace, sorts tokens lexicographically and
	// rejoins before comparison. Used for collated name strings where field
	// order varies by source.
	SortWords bool
}

// Normalize canonicalizes free text for comparison: lower-case, punctuation
// replaced by spaces, whitespace runs collapsed, ends trimmed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punctReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Score returns an integer in [0,100] measuring the similarity of a and b.
// Equal raw strings short-circuit to 100. Either side normalizing to empty
// yields 0. Otherwise the score is
//
//	floor(100 * (1 - distance/(len(a)+len(b))))
//
// over the normalized strings, clamped to [0,100]. Deterministic and pure.
func Score(a, b string, opts Options) int {
	if a == b {
		return 100
	}

	if opts.TruncateAt != 0 {
		a = truncateAt(a, opts.TruncateAt)
		b = truncateAt(b, opts.TruncateAt)
	}

	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return 0
	}

	if opts.SortWords {
		na = sortWords(na)
		nb = sortWords(nb)
	}
	if na == nb {
		return 100
	}

	dist := levenshtein.ComputeDistance(na, nb)
	total := utf8.RuneCountInString(na) + utf8.RuneCountInString(nb)
	score := 100 * (total - dist) / total
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ScoreAny returns the maximum Score over all (a, b) pairs from the two
// slices, trying each pair both literally and word-order-insensitively.
// Returns -1 when either slice has no non-empty entry.
func ScoreAny(as, bs []string, opts Options) int {
	best := -1
	for _, a := range as {
		if a == "" {
			continue
		}
		for _, b := range bs {
			if b == "" {
				continue
			}
			if s := Score(a, b, opts); s > best {
				best = s
			}
			sorted := opts
			sorted.SortWords = true
			if s := Score(a, b, sorted); s > best {
				best = s
			}
			if best == 100 {
				return best
			}
		}
	}
	return best
}

func truncateAt(s string, sep rune) string {
	if i := strings.IndexRune(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}

func sortWords(s string) string {
	words := strings.Fields(s)
	sort.Strings(words)
	return strings.Join(words, " ")
}
