package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// NormalizeHeader folds case and drops whitespace, underscores and hyphens so
// that "Phone Number", "phone_number" and "PHONE-NUMBER" compare equal.
func NormalizeHeader(s string) string {
	folded := cases.Fold().String(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ProposeMapping suggests a column for every catalog field whose key or alias
// matches a header exactly after normalization. Each field takes the first
// matching column on its own, so two fields may share a column. Unmatched
// fields are left out.
func ProposeMapping(columns []string, catalog *Catalog) ColumnMapping {
	normalized := make([]string, len(columns))
	for i, col := range columns {
		normalized[i] = NormalizeHeader(col)
	}

	mapping := ColumnMapping{}

	for _, field := range catalog.Fields() {
		aliases := make(map[string]struct{}, len(field.Aliases)+1)
		aliases[NormalizeHeader(field.Key)] = struct{}{}
		for _, alias := range field.Aliases {
			aliases[NormalizeHeader(alias)] = struct{}{}
		}

		for i, norm := range normalized {
			if norm == "" {
				continue
			}
			if _, ok := aliases[norm]; ok {
				mapping[field.Key] = columns[i]
				break
			}
		}
	}

	return mapping
}
