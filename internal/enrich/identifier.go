// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"regexp"
	"strings"
)

// doiPattern matches bare DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// issnPattern matches ISSNs with or without the hyphen: "1234-567X".
var issnPattern = regexp.MustCompile(`^(\d{4})-?(\d{3}[\dXx])$`)

// NormalizeDOI strips resolver and label prefixes ("https://doi.org/",
// "doi:") and returns the bare DOI, or "" when the remainder is not a DOI.
func NormalizeDOI(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/"} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if strings.HasPrefix(strings.ToLower(s), "doi:") {
		s = s[len("doi:"):]
	}
	s = strings.TrimSpace(s)
	if !doiPattern.MatchString(s) {
		return ""
	}
	return s
}

// NormalizeISBN strips separators and returns the 10- or 13-digit ISBN, or
// "" when the remainder is neither.
func NormalizeISBN(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == 'X' || r == 'x':
			return 'X'
		default:
			return -1
		}
	}, s)
	if len(cleaned) != 10 && len(cleaned) != 13 {
		return ""
	}
	return cleaned
}

// NormalizeISSN returns the hyphenated "NNNN-NNNC" form, or "" for
// anything that is not an ISSN.
func NormalizeISSN(s string) string {
	m := issnPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return m[1] + "-" + strings.ToUpper(m[2])
}
