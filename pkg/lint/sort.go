package lint

import (
	"cmp"
	"slices"
)

// sortDiagnostics orders diagnostics by position, then rule ID. Ties keep
// the order they were produced in.
func sortDiagnostics(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Range.Start, b.Range.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.RuleID, b.RuleID)
	})
}
