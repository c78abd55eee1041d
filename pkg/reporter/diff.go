package reporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/runner"
)

// DiffReporter prints the corrections of a dry run as git-style unified
// diffs, so the output can be reviewed or fed to "git apply".
type DiffReporter struct {
	output
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	if opts.WorkingDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			opts.WorkingDir = cwd
		}
	}
	return &DiffReporter{output: newOutput(opts)}
}

// diffTotals accumulates the closing stat line.
type diffTotals struct {
	files, additions, deletions, fixes, rejected int
}

// Report implements Reporter. The count is the number of changed files.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer r.flush(&err)
	if result == nil {
		return 0, nil
	}

	var t diffTotals
	for _, file := range result.Files {
		if file.Error != nil {
			r.fileError(file.Path, file.Error)
			continue
		}
		res := file.Result
		if res == nil {
			continue
		}
		if res.RejectedPass {
			t.rejected++
		}
		if res.Diff == nil || !res.Diff.HasChanges() {
			continue
		}
		t.files++
		t.additions += res.Diff.Additions
		t.deletions += res.Diff.Deletions
		t.fixes += res.FixesApplied
		r.hunks(res.Diff)
	}

	if t.files > 0 && r.opts.ShowSummary {
		r.stat(t)
	}
	return t.files, nil
}

func (r *DiffReporter) hunks(diff *fix.Diff) {
	shown := filepath.ToSlash(r.shortPath(diff.Path))
	r.line(r.styles.DiffHeader.Render("diff --git a/" + shown + " b/" + shown))
	r.line(r.styles.DiffRemove.Render("--- a/" + shown))
	r.line(r.styles.DiffAdd.Render("+++ b/" + shown))

	for _, line := range strings.Split(diff.String(), "\n") {
		switch {
		case line == "", strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
			continue
		case strings.HasPrefix(line, "@@"):
			r.line(r.styles.DiffHunk.Render(line))
		case strings.HasPrefix(line, "+"):
			r.line(r.styles.DiffAdd.Render(line))
		case strings.HasPrefix(line, "-"):
			r.line(r.styles.DiffRemove.Render(line))
		default:
			r.line(r.styles.DiffContext.Render(line))
		}
	}
	r.line("")
}

// shortPath falls back to the base name when the file lies more than two
// directories above the working directory.
func (r *DiffReporter) shortPath(path string) string {
	shown := r.path(path)
	if strings.Count(shown, "..") > 2 {
		return filepath.Base(path)
	}
	return shown
}

// stat writes the git-style closing line, e.g.
// "2 files changed, 3 insertions(+), 1 deletion(-); 4 fixes applied".
func (r *DiffReporter) stat(t diffTotals) {
	parts := []string{plural(t.files, "file") + " changed"}
	if t.additions > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(plural(t.additions, "insertion")+"(+)"))
	}
	if t.deletions > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(plural(t.deletions, "deletion")+"(-)"))
	}
	line := strings.Join(parts, ", ")
	if t.fixes > 0 {
		line += "; " + plural(t.fixes, "fix") + " applied"
	}
	if t.rejected > 0 {
		line += r.styles.Warning.Render(fmt.Sprintf("; %d with a rejected pass", t.rejected))
	}
	r.line(line)
}
