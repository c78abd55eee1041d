package runner

import "github.com/yaklabco/flowfix/pkg/lint"

// FileOutcome is the pipeline result of one discovered file. Exactly one of
// Result and Error is set.
type FileOutcome struct {
	Path   string
	Result *lint.PipelineResult
	Error  error
}

// Stats aggregates a run. Diagnostic counts describe the findings left after
// the last fix pass; DiagnosticsFixed counts the proposals that were applied.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int
	FilesWithIssues int

	// FilesSkipped counts files left alone, for example because they changed
	// on disk while being fixed.
	FilesSkipped  int
	FilesModified int

	DiagnosticsTotal      int
	DiagnosticsFixable    int
	DiagnosticsFixed      int
	DiagnosticsBySeverity map[string]int

	// DiagnosticsByCode counts findings per FLOW code.
	DiagnosticsByCode map[string]int

	// FixPasses is the number of kept fix passes over all files.
	FixPasses int

	// RejectedPasses counts files whose last fix pass was discarded because
	// it did not re-parse.
	RejectedPasses int

	BackupsCreated int
}

// Result is the outcome of one run, files in discovery order.
type Result struct {
	Files  []FileOutcome
	Stats  Stats
	Errors []error
}

// HasFailures reports whether any error-severity finding remains.
func (r *Result) HasFailures() bool {
	return r != nil && r.Stats.DiagnosticsBySeverity["error"] > 0
}

// HasIssues reports whether any finding remains.
func (r *Result) HasIssues() bool {
	return r != nil && r.Stats.DiagnosticsTotal > 0
}

func newStats() Stats {
	return Stats{
		DiagnosticsBySeverity: make(map[string]int),
		DiagnosticsByCode:     make(map[string]int),
	}
}

// accumulate appends outcome and folds it into the stats.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	s := &r.Stats

	res := outcome.Result
	switch {
	case outcome.Error != nil:
		s.FilesErrored++
		return
	case res == nil:
		return
	}

	s.FilesProcessed++
	if res.Skipped {
		s.FilesSkipped++
	}
	if res.Written {
		s.FilesModified++
	}
	if res.RejectedPass {
		s.RejectedPasses++
	}
	if res.BackupCreated {
		s.BackupsCreated++
	}
	s.FixPasses += res.FixPasses
	s.DiagnosticsFixed += res.FixesApplied

	if res.FileResult == nil || len(res.Diagnostics) == 0 {
		return
	}
	s.FilesWithIssues++
	s.DiagnosticsTotal += len(res.Diagnostics)
	s.DiagnosticsFixable += res.FixableCount()
	for _, diag := range res.Diagnostics {
		severity := string(diag.Severity)
		if severity == "" {
			severity = "warning"
		}
		s.DiagnosticsBySeverity[severity]++
		if diag.Code != "" {
			s.DiagnosticsByCode[string(diag.Code)]++
		}
	}
}
