package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/flowfix/internal/logging"
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// Internal diagnostics are not produced by a registered rule.
const (
	InternalRuleID   = "FLOW000"
	InternalRuleName = "internal-error"
)

// AppliedFix records a proposal whose edits were accepted in fix mode.
type AppliedFix struct {
	RuleID string
	Label  string
	Edits  *fix.MultiEdit
}

// FileResult contains the results of checking a single file.
type FileResult struct {
	// Snapshot is the parsed file.
	Snapshot *jast.FileSnapshot

	// Diagnostics contains all issues found, ordered by offset.
	Diagnostics []Diagnostic

	// Edits contains the validated, sorted edits of every applied fix.
	// Empty unless fix mode is on.
	Edits []fix.TextEdit

	// Applied lists the fixes whose edits are in Edits.
	Applied []AppliedFix

	// SkippedFixes counts fixes left out because their edits overlapped an
	// earlier fix or could not be computed. A later pass may pick them up.
	SkippedFixes int

	// EditConflicts is true if any fix was skipped due to overlap.
	EditConflicts bool

	// RuleErrors contains any errors from rule execution, keyed by rule ID.
	RuleErrors map[string]error

	// Defects holds internal analysis errors, one per affected method.
	Defects []error
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// HasFixes returns true if any fixes are ready to apply.
func (fr *FileResult) HasFixes() bool {
	return len(fr.Edits) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// FixableCount returns the number of diagnostics with proposals.
func (fr *FileResult) FixableCount() int {
	count := 0
	for i := range fr.Diagnostics {
		if fr.Diagnostics[i].HasFix() {
			count++
		}
	}
	return count
}

// Engine coordinates parsing, flow analysis and rule execution.
type Engine struct {
	// Parser parses source files into FileSnapshots.
	Parser Parser

	// Registry holds all available rules.
	Registry *Registry
}

// NewEngine creates a new Engine with the given parser and registry.
func NewEngine(parser Parser, registry *Registry) *Engine {
	return &Engine{
		Parser:   parser,
		Registry: registry,
	}
}

// CheckFile parses and checks a single file. In fix mode the preferred
// proposal of every auto-fixable diagnostic is materialized and the edit
// sets are merged; a set that overlaps an earlier one is skipped whole.
func (e *Engine) CheckFile(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.Config,
) (*FileResult, error) {
	logger := logging.FromContext(ctx)

	snapshot, err := e.Parser.Parse(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	result := &FileResult{
		Snapshot:   snapshot,
		RuleErrors: make(map[string]error),
	}
	analysis := NewAnalysis(snapshot, cfg)
	resolved := ResolveRules(e.Registry, cfg)
	autoFix := make(map[string]bool, len(resolved))

	for _, rr := range resolved {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("check cancelled: %w", err)
		}

		ruleCtx := NewRuleContext(ctx, snapshot, cfg, rr.Config, analysis)
		ruleCtx.Registry = e.Registry

		diags, err := rr.Rule.Apply(ruleCtx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("check cancelled: %w", ctxErr)
			}
			result.RuleErrors[rr.Rule.ID()] = err
			logger.Debug("rule failed", logging.FieldPath, path, logging.FieldCode, rr.Rule.ID(), logging.FieldError, err)
			continue
		}

		for i := range diags {
			diags[i].Severity = rr.Severity
			if diags[i].FilePath == "" {
				diags[i].FilePath = path
			}
			if diags[i].RuleName == "" {
				diags[i].RuleName = rr.Rule.Name()
			}
		}
		autoFix[rr.Rule.ID()] = rr.AutoFix
		result.Diagnostics = append(result.Diagnostics, diags...)
	}

	if report, _ := analysis.Report(ctx); report != nil {
		result.Defects = report.Defects
		for _, defect := range report.Defects {
			result.Diagnostics = append(result.Diagnostics, internalDiagnostic(snapshot, path, defect))
		}
	}
	sortDiagnostics(result.Diagnostics)

	e.collectFixes(ctx, result, autoFix, len(content))
	return result, nil
}

// collectFixes merges the preferred proposal of every auto-fixable
// diagnostic, in offset order, into result.Edits.
func (e *Engine) collectFixes(ctx context.Context, result *FileResult, autoFix map[string]bool, contentLen int) {
	logger := logging.FromContext(ctx)

	var accepted []fix.TextEdit
	for i := range result.Diagnostics {
		d := &result.Diagnostics[i]
		p := d.Preferred()
		if p == nil || !autoFix[d.RuleID] {
			continue
		}

		edits, err := p.Edits()
		if err != nil {
			result.SkippedFixes++
			logger.Debug("proposal failed", logging.FieldCode, d.RuleID, logging.FieldProposal, p.Label, logging.FieldError, err)
			continue
		}
		if edits.IsEmpty() {
			continue
		}

		candidate := append(append([]fix.TextEdit(nil), accepted...), edits.Edits()...)
		prepared, err := fix.PrepareEdits(candidate, contentLen)
		if err != nil {
			var conflict *fix.ConflictError
			if errors.As(err, &conflict) {
				result.EditConflicts = true
			}
			result.SkippedFixes++
			logger.Debug("fix skipped", logging.FieldCode, d.RuleID, logging.FieldProposal, p.Label, logging.FieldError, err)
			continue
		}
		accepted = prepared
		result.Applied = append(result.Applied, AppliedFix{RuleID: d.RuleID, Label: p.Label, Edits: edits})
	}
	result.Edits = accepted
}

func internalDiagnostic(snap *jast.FileSnapshot, path string, defect error) Diagnostic {
	rng := jast.Range{}
	var de *flowcheck.DefectError
	if errors.As(defect, &de) {
		rng = de.Range
	}
	d := NewDiagnostic(InternalRuleID, snap, rng, defect.Error()).
		WithSeverity(config.SeverityError).
		Build()
	d.RuleName = InternalRuleName
	d.FilePath = path
	return d
}
