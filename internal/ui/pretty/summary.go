package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/flowfix/pkg/runner"
)

// summaryValueColumn is where counts start in FormatSummary.
const summaryValueColumn = 21

func filesWord(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}

// FormatSummaryOneLine formats run statistics as a single line, e.g.
// "12 issues (8 errors, 4 warnings) in 3 files, 6 fixable".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	fixed := ""
	if stats.DiagnosticsFixed > 0 {
		fixed = s.Success.Render(fmt.Sprintf("%d fixed in %d %s",
			stats.DiagnosticsFixed, stats.FilesModified, filesWord(stats.FilesModified)))
	}

	if stats.DiagnosticsTotal == 0 {
		line := s.Success.Render("No issues found") + s.Dim.Render(fmt.Sprintf(" (%d files checked)", stats.FilesProcessed))
		if fixed != "" {
			line += ", " + fixed
		}
		return line + "\n"
	}

	var bySeverity []string
	for _, sev := range []struct {
		key, label string
		style      lipgloss.Style
	}{
		{"error", "errors", s.Error},
		{"warning", "warnings", s.Warning},
		{"info", "info", s.Info},
	} {
		if n := stats.DiagnosticsBySeverity[sev.key]; n > 0 {
			bySeverity = append(bySeverity, sev.style.Render(fmt.Sprintf("%d %s", n, sev.label)))
		}
	}

	issues := "issues"
	if stats.DiagnosticsTotal == 1 {
		issues = "issue"
	}
	head := fmt.Sprintf("%d %s", stats.DiagnosticsTotal, issues)
	if len(bySeverity) > 0 {
		head += " (" + strings.Join(bySeverity, ", ") + ")"
	}
	parts := []string{head + fmt.Sprintf(" in %d %s", stats.FilesWithIssues, filesWord(stats.FilesWithIssues))}

	if stats.DiagnosticsFixable > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d fixable", stats.DiagnosticsFixable)))
	}
	if fixed != "" {
		parts = append(parts, fixed)
	}
	return strings.Join(parts, ", ") + "\n"
}

// summaryEntry is one "label: value" line of FormatSummary. Nested entries
// are indented under the line before them; zero values are left out unless
// always is set.
type summaryEntry struct {
	label  string
	value  int
	style  lipgloss.Style
	nested bool
	always bool
}

// FormatSummary formats run statistics as a block with an overall verdict.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	files := []summaryEntry{
		{label: "Files checked", value: stats.FilesProcessed, style: s.SummaryValue, always: true},
		{label: "Files with issues", value: stats.FilesWithIssues, style: s.Failure},
		{label: "Files modified", value: stats.FilesModified, style: s.Success},
		{label: "Files failed", value: stats.FilesErrored, style: s.Failure},
	}
	findings := []summaryEntry{
		{label: "Total issues", value: stats.DiagnosticsTotal, style: s.SummaryValue, always: true},
		{label: "Errors", value: stats.DiagnosticsBySeverity["error"], style: s.Error, nested: true},
		{label: "Warnings", value: stats.DiagnosticsBySeverity["warning"], style: s.Warning, nested: true},
		{label: "Info", value: stats.DiagnosticsBySeverity["info"], style: s.Info, nested: true},
		{label: "Fixable", value: stats.DiagnosticsFixable, style: s.Success, nested: true},
		{label: "Fixed", value: stats.DiagnosticsFixed, style: s.Success, nested: true},
		{label: "Fix passes", value: stats.FixPasses, style: s.Dim, nested: true},
		{label: "Rejected passes", value: stats.RejectedPasses, style: s.Warning, nested: true},
	}

	var b strings.Builder
	b.WriteString("\n" + s.SummaryTitle.Render("Summary") + "\n" + strings.Repeat("-", 40) + "\n")
	for i, group := range [][]summaryEntry{files, findings} {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, e := range group {
			if e.value == 0 && !e.always {
				continue
			}
			indent := "  "
			if e.nested {
				indent = "    "
			}
			label := fmt.Sprintf("%-*s", summaryValueColumn, indent+e.label+":")
			b.WriteString(label + e.style.Render(strconv.Itoa(e.value)) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case stats.DiagnosticsBySeverity["error"] > 0:
		b.WriteString(s.Failure.Render("Check failed with errors"))
	case stats.DiagnosticsBySeverity["warning"] > 0:
		b.WriteString(s.Warning.Render("Check completed with warnings"))
	default:
		b.WriteString(s.Success.Render("Check passed"))
	}
	return b.String() + "\n"
}
