// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package country canonicalizes raw nationality and country tokens to ISO
// 3166-1 alpha-2 codes and ranks the resolved codes for the affiliation
// index. The taxonomy tables are read-only after load and shared by every
// citation in a run.
package country

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed data/countries.yaml
var defaultTablesYAML []byte

// alpha2Pattern matches a candidate 2-letter code.
var alpha2Pattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// tablesFile is the on-disk YAML shape of the taxonomy tables.
type tablesFile struct {
	Codes       map[string]string `yaml:"codes"`
	Alpha3      map[string]string `yaml:"alpha3"`
	CodeAliases map[string]string `yaml:"code_aliases"`
	NameAliases map[string]string `yaml:"name_aliases"`
}

// Tables folds the three national-identifier taxonomies (alpha-2, alpha-3,
// free-text name) plus their alias maps into one resolver.
type Tables struct {
	codes       map[string]string // alpha2 -> canonical name
	alpha3      map[string]string // alpha3 -> alpha2
	codeAliases map[string]string // alpha2 alias -> canonical alpha2
	nameToCode  map[string]string // lower-cased name -> alpha2
	nameAliases map[string]string // lower-cased alias -> lower-cased canonical name
}

// LoadTables reads a taxonomy YAML file. An empty path loads the embedded
// default tables.
func LoadTables(path string) (*Tables, error) {
	data := defaultTablesYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading taxonomy tables: %w", err)
		}
	}

	var tf tablesFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing taxonomy tables: %w", err)
	}
	if len(tf.Codes) == 0 {
		return nil, fmt.Errorf("taxonomy tables: no codes defined")
	}

	t := &Tables{
		codes:       make(map[string]string, len(tf.Codes)),
		alpha3:      make(map[string]string, len(tf.Alpha3)),
		codeAliases: make(map[string]string, len(tf.CodeAliases)),
		nameToCode:  make(map[string]string, len(tf.Codes)),
		nameAliases: make(map[string]string, len(tf.NameAliases)),
	}
	for code, name := range tf.Codes {
		code = strings.ToUpper(code)
		t.codes[code] = name
		t.nameToCode[strings.ToLower(name)] = code
	}
	for a3, a2 := range tf.Alpha3 {
		t.alpha3[strings.ToUpper(a3)] = strings.ToUpper(a2)
	}
	for alias, target := range tf.CodeAliases {
		t.codeAliases[strings.ToUpper(alias)] = strings.ToUpper(target)
	}
	for alias, name := range tf.NameAliases {
		t.nameAliases[strings.ToLower(alias)] = strings.ToLower(name)
	}
	return t, nil
}

// Reserved reports whether an alpha-2 code is a reserved or placeholder
// code: the generic unknown markers XX and ZZ, and the user-assigned
// ranges (AA, QM-QZ, XA-XZ). Upstream sources emit these as filler values;
// they must never count as real affiliation data.
func Reserved(code string) bool {
	if len(code) != 2 {
		return false
	}
	switch code {
	case "AA", "ZZ", "XX":
		return true
	}
	if code[0] == 'X' {
		return true
	}
	if code[0] == 'Q' && code[1] >= 'M' {
		return true
	}
	return false
}

// Resolve canonicalizes a raw nationality or country token to an alpha-2
// code. The cascade, first match wins: alpha-2 (via code alias), alpha-3,
// exact name, aliased name. Reserved codes and unmappable tokens report
// ok == false.
func (t *Tables) Resolve(token string) (code string, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	if alpha2Pattern.MatchString(token) {
		upper := strings.ToUpper(token)
		if !Reserved(upper) {
			if target, found := t.codeAliases[upper]; found {
				upper = target
			}
			if _, known := t.codes[upper]; known {
				return upper, true
			}
		}
		// Fall through: a reserved or unknown 2-letter token may still be a
		// name alias ("uk").
		return t.resolveName(token)
	}

	if len(token) == 3 {
		if a2, found := t.alpha3[strings.ToUpper(token)]; found && !Reserved(a2) {
			return a2, true
		}
	}

	return t.resolveName(token)
}

// ResolveAll resolves every token, dropping unresolvable ones. Resolution
// failure is expected and common for free-text input and is tolerated
// silently.
func (t *Tables) ResolveAll(tokens []string) []string {
	var codes []string
	for _, tok := range tokens {
		if code, ok := t.Resolve(tok); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// Name returns the canonical country name for an alpha-2 code.
func (t *Tables) Name(code string) (string, bool) {
	name, ok := t.codes[strings.ToUpper(code)]
	return name, ok
}

func (t *Tables) resolveName(token string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(token))
	if name == "" {
		return "", false
	}
	if code, found := t.nameToCode[name]; found {
		return code, true
	}
	if target, found := t.nameAliases[name]; found {
		if code, ok := t.nameToCode[target]; ok {
			return code, true
		}
	}
	return "", false
}
