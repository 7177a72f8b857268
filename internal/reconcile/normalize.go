package reconcile

import (
	"regexp"
	"strings"

	"wlrecon/pkg/contracts/domain"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}\x{85}]+`)
	underscoreRun = regexp.MustCompile(`__+`)
)

// NormalizeColumnName strips the name, turns whitespace runs into "_"
// (Unicode spaces such as NBSP included), collapses repeated underscores
// and lowercases the result.
func NormalizeColumnName(name string) string {
	n := strings.TrimSpace(name)
	n = whitespaceRun.ReplaceAllString(n, "_")
	n = underscoreRun.ReplaceAllString(n, "_")
	return strings.ToLower(n)
}

// NormalizeColumns relabels every column of t. Cell values are untouched.
func NormalizeColumns(t domain.Table) domain.Table {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = NormalizeColumnName(c)
	}
	out, _ := t.WithColumns(cols)
	return out
}
