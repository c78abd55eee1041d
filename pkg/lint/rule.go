// Package lint provides the rule engine, diagnostics, registry and the safe
// fix pipeline for flowfix.
package lint

import (
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/correction"
	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// Diagnostic represents a single issue found in a file.
type Diagnostic struct {
	// RuleID is the identifier of the rule that produced this diagnostic.
	RuleID string

	// RuleName is the human-readable name of the rule (e.g., "unreachable-code").
	RuleName string

	// Code is the flow finding code behind the diagnostic, if any.
	Code flowcheck.Code

	// Message is the human-readable description of the issue.
	Message string

	// Severity indicates the importance of the diagnostic.
	Severity config.Severity

	// FilePath is the path to the file containing the issue.
	FilePath string

	// Range is the byte span of the issue.
	Range jast.Range

	// StartLine, StartColumn, EndLine and EndColumn are 1-based.
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int

	// Suggestion is the label of the preferred proposal, if any.
	Suggestion string

	// Proposals are the corrections for this issue, highest relevance
	// first. Their edits are computed on demand.
	Proposals []*correction.Proposal
}

// HasFix returns true if this diagnostic has at least one proposal.
func (d *Diagnostic) HasFix() bool {
	return len(d.Proposals) > 0
}

// Preferred returns the proposal applied by --fix, or nil.
func (d *Diagnostic) Preferred() *correction.Proposal {
	return correction.Preferred(d.Proposals)
}

// Rule defines the interface that all rules must implement.
type Rule interface {
	// ID returns the unique identifier for this rule (e.g., "FLOW001").
	ID() string

	// Name returns the human-readable name of the rule.
	Name() string

	// Description returns a detailed description of what the rule checks.
	Description() string

	// DefaultEnabled returns whether the rule is enabled by default.
	DefaultEnabled() bool

	// DefaultSeverity returns the default severity for this rule.
	DefaultSeverity() config.Severity

	// Tags returns categorization tags for this rule.
	Tags() []string

	// CanFix returns whether this rule can produce corrections.
	CanFix() bool

	// Apply executes the rule against the given context.
	//
	// Rules must:
	//   - Return diagnostics for each violation found.
	//   - Attach correction proposals when CanFix() is true.
	//   - Respect context cancellation.
	//   - Return error only for internal failures, not violations.
	Apply(ctx *RuleContext) ([]Diagnostic, error)
}

// SeverityConfigurer is implemented by rules whose default severity comes
// from a configuration section outside the rules table.
type SeverityConfigurer interface {
	ConfiguredSeverity(cfg *config.Config) (config.Severity, bool)
}
