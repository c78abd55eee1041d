package rules

import (
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/lint"
)

// FlowRule reports the findings of one flow code.
type FlowRule struct {
	lint.BaseRule

	code flowcheck.Code
}

func newFlowRule(code flowcheck.Code, name, desc string, severity config.Severity, tags []string) *FlowRule {
	return &FlowRule{
		BaseRule: lint.NewBaseRule(string(code), name, desc, severity, tags, fixable(code)),
		code:     code,
	}
}

// Code returns the finding code the rule reports.
func (r *FlowRule) Code() flowcheck.Code {
	return r.code
}

// Apply reports each finding of the rule's code with its proposals.
func (r *FlowRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	findings, err := ctx.Findings(r.code)
	if err != nil && len(findings) == 0 {
		return nil, err
	}

	diags := make([]lint.Diagnostic, 0, len(findings))
	for _, f := range findings {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}
		b := lint.FromFinding(r.ID(), ctx.File, f).WithRegistry(ctx.Registry)
		if r.CanFix() {
			b = b.WithProposals(ctx.Proposals(f))
		}
		diags = append(diags, b.Build())
	}
	return diags, nil
}

// SyntaxRule reports parser errors together with the unparsable regions
// the analysis met.
type SyntaxRule struct {
	*FlowRule
}

// NewSyntaxErrorRule creates the FLOW012 rule.
func NewSyntaxErrorRule() *SyntaxRule {
	return &SyntaxRule{newFlowRule(flowcheck.CodeSyntax, "syntax-error",
		"Source could not be parsed; analysis of the affected region is approximate",
		config.SeverityError, []string{"syntax"})}
}

// Apply reports parser errors first, then regions not already covered.
func (r *SyntaxRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	var diags []lint.Diagnostic
	seen := make(map[int]bool)
	if ctx.File != nil {
		for _, e := range ctx.File.Errors {
			seen[e.Range.Start] = true
			diags = append(diags, lint.NewDiagnostic(r.ID(), ctx.File, e.Range, e.Message).
				WithRegistry(ctx.Registry).Build())
		}
	}

	found, err := r.FlowRule.Apply(ctx)
	for _, d := range found {
		if !seen[d.Range.Start] {
			diags = append(diags, d)
		}
	}
	return diags, err
}

// UnusedVariableRule takes its default severity from the analysis section.
type UnusedVariableRule struct {
	*FlowRule
}

// NewUnusedVariableRule creates the FLOW008 rule.
func NewUnusedVariableRule() *UnusedVariableRule {
	return &UnusedVariableRule{newFlowRule(flowcheck.CodeUnusedVariable, "unused-variable",
		"Local variable is declared but never read",
		config.SeverityWarning, []string{"locals", "cleanup"})}
}

// ConfiguredSeverity returns analysis.unused_variable_severity when set.
func (r *UnusedVariableRule) ConfiguredSeverity(cfg *config.Config) (config.Severity, bool) {
	if cfg == nil || cfg.Analysis.UnusedVariableSeverity == "" {
		return "", false
	}
	sev := config.Severity(cfg.Analysis.UnusedVariableSeverity)
	return sev, sev.IsValid()
}

// NewUnreachableCodeRule creates the FLOW001 rule.
func NewUnreachableCodeRule() *FlowRule {
	return newFlowRule(flowcheck.CodeUnreachable, "unreachable-code",
		"Statement can never execute because no path reaches it",
		config.SeverityError, []string{"reachability"})
}

// NewDeadCodeRule creates the FLOW002 rule.
func NewDeadCodeRule() *FlowRule {
	return newFlowRule(flowcheck.CodeDeadCode, "dead-code",
		"Statement is only reachable under a constant-false condition",
		config.SeverityWarning, []string{"reachability", "cleanup"})
}

// NewUninitializedVariableRule creates the FLOW003 rule.
func NewUninitializedVariableRule() *FlowRule {
	return newFlowRule(flowcheck.CodeUninitialized, "uninitialized-variable",
		"Local variable is read before it is definitely assigned",
		config.SeverityError, []string{"assignment", "locals"})
}

// NewMissingReturnRule creates the FLOW004 rule.
func NewMissingReturnRule() *FlowRule {
	return newFlowRule(flowcheck.CodeMissingReturn, "missing-return",
		"Method with a result type can complete without returning a value",
		config.SeverityError, []string{"reachability"})
}

// NewFinalReassignedRule creates the FLOW005 rule.
func NewFinalReassignedRule() *FlowRule {
	return newFlowRule(flowcheck.CodeFinalReassigned, "final-reassigned",
		"Final local variable may already have been assigned",
		config.SeverityError, []string{"assignment", "locals"})
}

// NewNullDereferenceRule creates the FLOW006 rule.
func NewNullDereferenceRule() *FlowRule {
	return newFlowRule(flowcheck.CodeNullDereference, "null-dereference",
		"Local variable is dereferenced while it can only be null",
		config.SeverityError, []string{"null"})
}

// NewPotentialNullDereferenceRule creates the FLOW007 rule.
func NewPotentialNullDereferenceRule() *FlowRule {
	return newFlowRule(flowcheck.CodePotentialNull, "potential-null-dereference",
		"Local variable is dereferenced while it may be null",
		config.SeverityWarning, []string{"null"})
}

// NewUnhandledExceptionRule creates the FLOW009 rule.
func NewUnhandledExceptionRule() *FlowRule {
	return newFlowRule(flowcheck.CodeUnhandledException, "unhandled-exception",
		"Checked exception is neither caught nor declared",
		config.SeverityError, []string{"exceptions"})
}

// NewMisplacedJumpRule creates the FLOW010 rule.
func NewMisplacedJumpRule() *FlowRule {
	return newFlowRule(flowcheck.CodeMisplacedJump, "misplaced-jump",
		"Break or continue has no enclosing target",
		config.SeverityError, []string{"reachability"})
}

// NewTypeMismatchRule creates the FLOW011 rule.
func NewTypeMismatchRule() *FlowRule {
	return newFlowRule(flowcheck.CodeTypeMismatch, "type-mismatch",
		"Local variable is initialized with a literal of an incompatible type",
		config.SeverityError, []string{"types", "locals"})
}

func fixable(code flowcheck.Code) bool {
	switch code {
	case flowcheck.CodeUnreachable, flowcheck.CodeDeadCode, flowcheck.CodeUninitialized,
		flowcheck.CodeMissingReturn, flowcheck.CodeFinalReassigned, flowcheck.CodeUnusedVariable,
		flowcheck.CodeUnhandledException, flowcheck.CodeMisplacedJump, flowcheck.CodeTypeMismatch:
		return true
	default:
		return false
	}
}
