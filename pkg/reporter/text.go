package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/flowfix/pkg/runner"
)

// TextReporter prints findings grouped by file, each with its source line
// and, on request, every correction proposal.
type TextReporter struct {
	output
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{output: newOutput(opts)}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (total int, err error) {
	defer r.flush(&err)

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			r.line(r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("report: %w", err)
		}
		total += r.file(file)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}
	return total, nil
}

func (r *TextReporter) file(file runner.FileOutcome) int {
	if file.Error != nil {
		r.fileError(file.Path, file.Error)
		return 0
	}
	if file.Result == nil || file.Result.FileResult == nil || len(file.Result.Diagnostics) == 0 {
		return 0
	}

	path := r.path(file.Path)
	diags := file.Result.Diagnostics
	if r.opts.GroupByFile {
		r.line(r.styles.FormatFileHeader(path, len(diags)))
	}

	snap := file.Result.Snapshot
	for i := range diags {
		diag := diags[i]
		diag.FilePath = path

		var source string
		if r.opts.ShowContext && snap != nil {
			source = string(snap.LineContent(diag.StartLine))
		}
		fmt.Fprint(r.bw, r.styles.FormatDiagnosticWithFormat(&diag, r.opts.ShowContext, source, r.opts.RuleFormat))
		if r.opts.ShowProposals {
			fmt.Fprint(r.bw, r.styles.FormatProposals(&diag))
		}
	}

	if r.opts.GroupByFile {
		r.line("")
	}
	return len(diags)
}
