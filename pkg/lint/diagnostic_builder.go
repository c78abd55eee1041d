package lint

import (
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/correction"
	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// DiagnosticBuilder helps construct Diagnostic values.
type DiagnosticBuilder struct {
	diag Diagnostic
}

// NewDiagnostic starts building a diagnostic for the given span of file.
func NewDiagnostic(ruleID string, file *jast.FileSnapshot, rng jast.Range, message string) *DiagnosticBuilder {
	d := Diagnostic{
		RuleID:  ruleID,
		Message: message,
		Range:   rng,
	}
	if file != nil {
		d.FilePath = file.Path
		d.StartLine, d.StartColumn = file.LineAt(rng.Start)
		d.EndLine, d.EndColumn = file.LineAt(rng.End)
	}
	return &DiagnosticBuilder{diag: d}
}

// FromFinding starts building a diagnostic for a flow finding.
func FromFinding(ruleID string, file *jast.FileSnapshot, f flowcheck.Finding) *DiagnosticBuilder {
	b := NewDiagnostic(ruleID, file, f.Range, f.Message)
	b.diag.Code = f.Code
	return b
}

// WithRegistry fills in the rule name from reg.
func (b *DiagnosticBuilder) WithRegistry(reg *Registry) *DiagnosticBuilder {
	if reg != nil {
		if rule, ok := reg.GetByID(b.diag.RuleID); ok {
			b.diag.RuleName = rule.Name()
		}
	}
	return b
}

// WithSeverity sets the severity.
func (b *DiagnosticBuilder) WithSeverity(s config.Severity) *DiagnosticBuilder {
	b.diag.Severity = s
	return b
}

// WithSuggestion sets a human-readable fix suggestion.
func (b *DiagnosticBuilder) WithSuggestion(s string) *DiagnosticBuilder {
	b.diag.Suggestion = s
	return b
}

// WithProposals attaches corrections. The suggestion defaults to the label
// of the preferred one.
func (b *DiagnosticBuilder) WithProposals(proposals []*correction.Proposal) *DiagnosticBuilder {
	b.diag.Proposals = append(b.diag.Proposals, proposals...)
	if p := correction.Preferred(b.diag.Proposals); p != nil && b.diag.Suggestion == "" {
		b.diag.Suggestion = p.Label
	}
	return b
}

// Build returns the constructed Diagnostic.
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.diag
}
