package reporter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/flowfix/pkg/analysis"
	"github.com/yaklabco/flowfix/pkg/config"
)

const summaryWidth = 90

// summaryCol is one column of a summary table. Text columns are left
// aligned and truncated; numeric columns are right aligned.
type summaryCol struct {
	title   string
	width   int
	numeric bool
}

var (
	ruleCols = []summaryCol{
		{title: "Rule", width: 30}, {title: "Code", width: 8},
		{title: "Count", width: 7, numeric: true}, {title: "Errors", width: 7, numeric: true},
		{title: "Warnings", width: 9, numeric: true}, {title: "Fixable", width: 8, numeric: true},
	}
	fileCols = []summaryCol{
		{title: "File", width: 60},
		{title: "Count", width: 7, numeric: true}, {title: "Errors", width: 7, numeric: true},
		{title: "Warnings", width: 9, numeric: true},
	}
	kindCols = []summaryCol{
		{title: "Kind", width: 30},
		{title: "Offered", width: 8, numeric: true}, {title: "Preferred", width: 10, numeric: true},
	}
)

// SummaryRenderer prints findings grouped by rule and FLOW code, by file
// and by proposal kind.
type SummaryRenderer struct {
	output
}

// NewSummaryRenderer creates a summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	return &SummaryRenderer{output: newOutput(opts)}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	defer r.flush(&err)

	if report.Totals.Issues == 0 {
		r.line(r.styles.Success.Render("No issues found"))
		return nil
	}

	sections := []func(*analysis.Report) bool{r.rules, r.files}
	if r.opts.SummaryOrder == config.SummaryOrderFiles {
		sections = []func(*analysis.Report) bool{r.files, r.rules}
	}
	sections = append(sections, r.kinds)
	for _, section := range sections {
		if section(report) {
			r.line("")
		}
	}
	r.totals(report.Totals)
	return nil
}

func (r *SummaryRenderer) rules(report *analysis.Report) bool {
	if len(report.ByRule) == 0 {
		return false
	}
	r.table("Rules Summary", ruleCols)
	for _, rule := range report.ByRule {
		name := rule.RuleName
		if name == "" {
			name = rule.RuleID
		}
		fixable := ""
		if rule.Fixable > 0 {
			fixable = "✓ " + strconv.Itoa(rule.Fixable)
		}
		r.row(ruleCols, r.countStyle(rule.Counts), name, rule.Code,
			strconv.Itoa(rule.Issues), strconv.Itoa(rule.Errors), strconv.Itoa(rule.Warnings), fixable)
	}
	return true
}

func (r *SummaryRenderer) files(report *analysis.Report) bool {
	if len(report.ByFile) == 0 {
		return false
	}
	r.table("Files Summary", fileCols)
	for _, file := range report.ByFile {
		r.row(fileCols, r.countStyle(file.Counts), file.Path,
			strconv.Itoa(file.Issues), strconv.Itoa(file.Errors), strconv.Itoa(file.Warnings))
	}
	return true
}

func (r *SummaryRenderer) kinds(report *analysis.Report) bool {
	if len(report.ByKind) == 0 {
		return false
	}
	r.table("Proposals by kind", kindCols)
	for _, kind := range report.ByKind {
		r.row(kindCols, lipgloss.NewStyle(), kind.Kind, strconv.Itoa(kind.Offered), strconv.Itoa(kind.Preferred))
	}
	return true
}

func (r *SummaryRenderer) countStyle(c analysis.Counts) lipgloss.Style {
	switch {
	case c.Errors > 0:
		return r.styles.TableErrorRow
	case c.Warnings > 0:
		return r.styles.TableWarnRow
	}
	return lipgloss.NewStyle()
}

func (r *SummaryRenderer) table(title string, cols []summaryCol) {
	sep := r.styles.TableSeparator.Render(strings.Repeat("─", summaryWidth))
	r.line(r.styles.Bold.Render(title))
	r.line(sep)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	r.line(r.styles.TableHeader.Render(cells(cols, titles)))
	r.line(sep)
}

// row styles only the first cell, which names the group.
func (r *SummaryRenderer) row(cols []summaryCol, style lipgloss.Style, values ...string) {
	r.line(style.Render(cells(cols[:1], values[:1])) + " " + cells(cols[1:], values[1:]))
}

// cells lays values out in cols, padding before styling.
func cells(cols []summaryCol, values []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := values[i]
		switch {
		case c.numeric:
			parts[i] = runewidth.FillLeft(v, c.width)
		case i == 0 && c.title == "File":
			parts[i] = runewidth.FillRight(truncateLeft(v, c.width-2), c.width)
		default:
			parts[i] = runewidth.FillRight(runewidth.Truncate(v, c.width-2, "…"), c.width)
		}
	}
	return strings.Join(parts, " ")
}

// truncateLeft keeps the end of a path.
func truncateLeft(s string, width int) string {
	over := runewidth.StringWidth(s) - width
	if over <= 0 {
		return s
	}
	return runewidth.TruncateLeft(s, over+1, "…")
}

func (r *SummaryRenderer) totals(t analysis.Totals) {
	var severities []string
	if t.Errors > 0 {
		severities = append(severities, r.styles.Error.Render(fmt.Sprintf("%d errors", t.Errors)))
	}
	if t.Warnings > 0 {
		severities = append(severities, r.styles.Warning.Render(fmt.Sprintf("%d warnings", t.Warnings)))
	}
	if t.Infos > 0 {
		severities = append(severities, r.styles.Info.Render(fmt.Sprintf("%d info", t.Infos)))
	}

	issues := "issues"
	if t.Issues == 1 {
		issues = "issue"
	}
	head := fmt.Sprintf("%d %s", t.Issues, issues)
	if len(severities) > 0 {
		head += " (" + strings.Join(severities, ", ") + ")"
	}
	r.line(r.styles.Bold.Render("Total: ") + head + " in " + plural(t.FilesWithIssues, "file"))
}
