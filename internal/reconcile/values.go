package reconcile

import (
	"strings"

	"golang.org/x/text/cases"

	"wlrecon/pkg/contracts/domain"
)

// canonicalValue trims and case-folds v, then folds boolean words.
// Only TRUE/YES and FALSE/NO are synonyms; "1" and "0" compare as text.
func canonicalValue(v domain.Value) string {
	folded := cases.Fold().String(strings.TrimSpace(v.String()))
	switch folded {
	case "true", "yes":
		return "TRUE"
	case "false", "no":
		return "FALSE"
	}
	return folded
}

// ValuesMatch compares a CCP value with an AT value. Two nulls match, a null
// never matches a present value, and present values match when their
// canonical forms are equal. Numbers are compared as text, so "1.0" and "1"
// differ.
func ValuesMatch(ccp, at domain.Value) bool {
	if ccp.IsNull() || at.IsNull() {
		return ccp.IsNull() && at.IsNull()
	}
	return canonicalValue(ccp) == canonicalValue(at)
}
