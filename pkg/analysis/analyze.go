package analysis

import (
	"cmp"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/flowfix/pkg/correction"
	"github.com/yaklabco/flowfix/pkg/lint"
	"github.com/yaklabco/flowfix/pkg/runner"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

const (
	severityError   = "error"
	severityWarning = "warning"
	severityInfo    = "info"
)

// builder accumulates the groupings of one Analyze call.
type builder struct {
	opts      Options
	files     map[string]*FileAnalysis
	rules     map[string]*RuleAnalysis
	kinds     map[string]*KindAnalysis
	fileRules map[string]map[string]struct{}
	ruleFiles map[string]map[string]struct{}
}

func newBuilder(opts Options) *builder {
	return &builder{
		opts:      opts,
		files:     make(map[string]*FileAnalysis),
		rules:     make(map[string]*RuleAnalysis),
		kinds:     make(map[string]*KindAnalysis),
		fileRules: make(map[string]map[string]struct{}),
		ruleFiles: make(map[string]map[string]struct{}),
	}
}

// Analyze reduces a runner.Result to a Report in one pass over the
// diagnostics.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{Version: ReportVersion, Timestamp: time.Now()}
	if result == nil {
		return report
	}

	b := newBuilder(opts)
	for _, file := range result.Files {
		b.file(report, file)
	}

	if opts.has(ViewByFile) {
		report.ByFile = b.byFile()
	}
	if opts.has(ViewByRule) {
		report.ByRule = b.byRule()
	}
	if opts.has(ViewByKind) {
		report.ByKind = b.byKind()
	}
	return report
}

func (b *builder) file(report *Report, file runner.FileOutcome) {
	report.Totals.Files++
	path := b.displayPath(file.Path)

	if file.Error != nil {
		report.Totals.FilesErrored++
		report.Errors = append(report.Errors, FileError{Path: path, Message: file.Error.Error()})
		return
	}
	res := file.Result
	if res == nil {
		return
	}
	if res.Written {
		report.Totals.FilesModified++
	}
	report.Totals.Fixed += res.FixesApplied
	if res.FileResult == nil || len(res.Diagnostics) == 0 {
		return
	}
	report.Totals.FilesWithIssues++

	for i := range res.Diagnostics {
		diag := &res.Diagnostics[i]
		severity := string(diag.Severity)
		if severity == "" {
			severity = severityWarning
		}
		b.count(&report.Totals, path, severity, diag)
		if b.opts.has(ViewDiagnostics) {
			report.Diagnostics = append(report.Diagnostics, newDiagnosticEntry(path, severity, diag))
		}
	}
}

func (b *builder) count(totals *Totals, path, severity string, diag *lint.Diagnostic) {
	totals.Issues++
	switch severity {
	case severityError:
		totals.Errors++
	case severityWarning:
		totals.Warnings++
	case severityInfo:
		totals.Infos++
	}

	fa := b.files[path]
	if fa == nil {
		fa = &FileAnalysis{Path: path}
		b.files[path] = fa
		b.fileRules[path] = make(map[string]struct{})
	}
	fa.add(severity)
	b.fileRules[path][diag.RuleID] = struct{}{}

	ra := b.rules[diag.RuleID]
	if ra == nil {
		ra = &RuleAnalysis{RuleID: diag.RuleID, RuleName: diag.RuleName, Code: string(diag.Code)}
		b.rules[diag.RuleID] = ra
		b.ruleFiles[diag.RuleID] = make(map[string]struct{})
	}
	ra.add(severity)
	b.ruleFiles[diag.RuleID][path] = struct{}{}

	if diag.HasFix() {
		totals.Fixable++
		ra.Fixable++
	}

	preferred := diag.Preferred()
	for _, p := range diag.Proposals {
		ka := b.kinds[string(p.Kind)]
		if ka == nil {
			ka = &KindAnalysis{Kind: string(p.Kind)}
			b.kinds[string(p.Kind)] = ka
		}
		ka.Offered++
		if p == preferred {
			ka.Preferred++
		}
	}
}

func (b *builder) displayPath(path string) string {
	if b.opts.WorkingDir == "" {
		return path
	}
	if rel, err := filepath.Rel(b.opts.WorkingDir, path); err == nil {
		return rel
	}
	return path
}

func (b *builder) byFile() []FileAnalysis {
	out := make([]FileAnalysis, 0, len(b.files))
	for path, fa := range b.files {
		fa.Rules = slices.Sorted(maps.Keys(b.fileRules[path]))
		out = append(out, *fa)
	}
	sortGroups(out, b.opts.SortBy, b.opts.SortDesc, func(f FileAnalysis) (Counts, string) {
		return f.Counts, f.Path
	})
	return out
}

func (b *builder) byRule() []RuleAnalysis {
	out := make([]RuleAnalysis, 0, len(b.rules))
	for id, ra := range b.rules {
		ra.Files = slices.Sorted(maps.Keys(b.ruleFiles[id]))
		out = append(out, *ra)
	}
	sortGroups(out, b.opts.SortBy, b.opts.SortDesc, func(r RuleAnalysis) (Counts, string) {
		return r.Counts, r.RuleID
	})
	return out
}

// byKind lists quick fixes before refactorings, then any other kind by name.
func (b *builder) byKind() []KindAnalysis {
	rank := func(kind string) int {
		switch correction.Kind(kind) {
		case correction.KindQuickFix:
			return 0
		case correction.KindRefactor:
			return 1
		}
		return 2
	}
	out := make([]KindAnalysis, 0, len(b.kinds))
	for _, ka := range b.kinds {
		out = append(out, *ka)
	}
	slices.SortFunc(out, func(x, y KindAnalysis) int {
		return cmp.Or(cmp.Compare(rank(x.Kind), rank(y.Kind)), cmp.Compare(x.Kind, y.Kind))
	})
	return out
}

// newDiagnosticEntry converts a diagnostic. Only the preferred proposal's
// edits are computed; a proposal whose edits fail is listed without them.
func newDiagnosticEntry(path, severity string, diag *lint.Diagnostic) DiagnosticEntry {
	entry := DiagnosticEntry{
		FilePath:    path,
		RuleID:      diag.RuleID,
		RuleName:    diag.RuleName,
		Code:        string(diag.Code),
		Severity:    severity,
		Message:     diag.Message,
		StartLine:   diag.StartLine,
		StartColumn: diag.StartColumn,
		EndLine:     diag.EndLine,
		EndColumn:   diag.EndColumn,
		Suggestion:  diag.Suggestion,
		Fixable:     diag.HasFix(),
	}

	preferred := diag.Preferred()
	for _, p := range diag.Proposals {
		pe := ProposalEntry{Label: p.Label, Kind: string(p.Kind), Relevance: p.Relevance, Preferred: p == preferred}
		if pe.Preferred {
			if edits, err := p.Edits(); err == nil {
				for _, e := range edits.Edits() {
					pe.Edits = append(pe.Edits, EditEntry{Offset: e.Offset, Length: e.Length, Text: e.Text})
				}
			}
		}
		entry.Proposals = append(entry.Proposals, pe)
	}
	return entry
}
