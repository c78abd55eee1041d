package analysis

import (
	"cmp"
	"slices"
)

// View selects one precomputed grouping of a Report.
type View uint8

// Report views. ViewAll is what renderers get unless they ask for less.
const (
	ViewDiagnostics View = 1 << iota
	ViewByFile
	ViewByRule
	ViewByKind

	ViewAll = ViewDiagnostics | ViewByFile | ViewByRule | ViewByKind
)

// SortField orders the ByFile and ByRule groups.
type SortField string

const (
	// SortByCount puts the groups with the most findings first.
	SortByCount SortField = "count"
	// SortByAlpha orders by rule ID or file path, always ascending.
	SortByAlpha SortField = "alpha"
	// SortBySeverity puts errors first, then warnings, then the larger group.
	SortBySeverity SortField = "severity"
)

// IsValid reports whether s names a known ordering.
func (s SortField) IsValid() bool {
	return s == SortByCount || s == SortByAlpha || s == SortBySeverity
}

// Options configures Analyze.
type Options struct {
	Views View

	SortBy SortField

	// SortDesc reverses SortByCount. The other orderings ignore it.
	SortDesc bool

	// WorkingDir makes reported paths relative. Empty keeps them as given.
	WorkingDir string
}

// DefaultOptions computes every view, largest groups first.
func DefaultOptions() Options {
	return Options{Views: ViewAll, SortBy: SortByCount, SortDesc: true}
}

func (o Options) has(v View) bool {
	return o.Views&v != 0
}

// sortGroups orders groups by the chosen field; key returns the group's
// counts and its name, which breaks ties.
func sortGroups[T any](groups []T, by SortField, desc bool, key func(T) (Counts, string)) {
	slices.SortFunc(groups, func(a, b T) int {
		ca, na := key(a)
		cb, nb := key(b)
		switch by {
		case SortByAlpha:
			return cmp.Compare(na, nb)
		case SortBySeverity:
			return cmp.Or(
				cmp.Compare(cb.Errors, ca.Errors),
				cmp.Compare(cb.Warnings, ca.Warnings),
				cmp.Compare(cb.Issues, ca.Issues),
				cmp.Compare(na, nb),
			)
		}
		order := cmp.Compare(ca.Issues, cb.Issues)
		if desc {
			order = -order
		}
		return cmp.Or(order, cmp.Compare(na, nb))
	})
}
