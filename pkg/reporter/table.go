package reporter

import (
	"context"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/yaklabco/flowfix/internal/ui/pretty"
	"github.com/yaklabco/flowfix/pkg/runner"
)

const fixHint = "Run with --fix to auto-repair fixable issues"

// TableReporter prints findings as a table with one row per finding, or one
// table per file when Options.PerFile is set.
type TableReporter struct {
	output
	formatter *pretty.TableFormatter
}

// NewTableReporter creates a table reporter sized to the terminal behind
// opts.Writer, if any.
func NewTableReporter(opts Options) *TableReporter {
	o := newOutput(opts)
	return &TableReporter{
		output:    o,
		formatter: pretty.NewTableFormatter(o.styles, o.color, terminalWidth(opts.Writer)),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (total int, err error) {
	defer r.flush(&err)

	summary := r.opts.ShowSummary
	if result == nil || len(result.Files) == 0 {
		if summary {
			r.line(r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	result = r.withDisplayPaths(result)
	total, fixable := tally(result)
	if total == 0 {
		if summary {
			r.line("")
			r.line(r.styles.Success.Render("All files passed!"))
			r.line(r.styles.Dim.Render(plural(result.Stats.FilesProcessed, "file") + " checked"))
		}
		return 0, nil
	}

	if r.opts.PerFile {
		for _, file := range result.Files {
			if table := r.formatter.FormatFileTable(file); table != "" {
				r.line("")
				r.line(r.styles.Bold.Render(file.Path))
				r.bw.WriteString(table)
			}
		}
	} else {
		r.bw.WriteString(r.formatter.FormatTable(result))
	}

	if !summary {
		return total, nil
	}
	if r.opts.PerFile {
		r.line("")
		r.line(r.styles.TableSeparator.Render(strings.Repeat("═", 80)))
		r.line(r.styles.Bold.Render("Overall Summary"))
	}
	r.line(r.formatter.FormatTableSummary(result.Stats, ""))
	if fixable {
		r.line("")
		r.line(r.styles.Dim.Render(fixHint))
	}
	return total, nil
}

// withDisplayPaths returns a shallow copy of result with paths relative to
// the working directory.
func (r *TableReporter) withDisplayPaths(result *runner.Result) *runner.Result {
	if r.opts.WorkingDir == "" {
		return result
	}
	shown := *result
	shown.Files = make([]runner.FileOutcome, len(result.Files))
	for i, file := range result.Files {
		file.Path = r.path(file.Path)
		shown.Files[i] = file
	}
	return &shown
}

// tally counts the findings in result and whether any has a correction.
func tally(result *runner.Result) (total int, fixable bool) {
	for _, file := range result.Files {
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}
		total += len(file.Result.Diagnostics)
		fixable = fixable || file.Result.FixableCount() > 0
	}
	return total, fixable
}

// terminalWidth is the width of w when it is a terminal, zero otherwise.
func terminalWidth(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil {
		return width
	}
	return 0
}
