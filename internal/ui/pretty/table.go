package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
	"github.com/yaklabco/flowfix/pkg/runner"
)

const (
	fixableSymbol    = "+"
	cellGap          = 2
	fixableCellWidth = 3
	defaultTermWidth = 100
)

// TableRow is one finding laid out for the table.
type TableRow struct {
	File     string
	Location string
	Message  string
	RuleID   string
	Severity config.Severity
	Fixable  bool
}

// DiagnosticToTableRow converts a lint diagnostic to a table row.
func DiagnosticToTableRow(path string, diag *lint.Diagnostic) TableRow {
	return TableRow{
		File:     path,
		Location: fmt.Sprintf("%d:%d", diag.StartLine, diag.StartColumn),
		Message:  diag.Message,
		RuleID:   diag.RuleID,
		Severity: diag.Severity,
		Fixable:  diag.HasFix(),
	}
}

// column describes one text column. Paths keep their tail when truncated.
type column struct {
	title    string
	min      int
	keepTail bool
	cell     func(TableRow) string
}

var (
	fileColumn    = column{title: "FILE", min: 20, keepTail: true, cell: func(r TableRow) string { return r.File }}
	locColumn     = column{title: "LOC", min: 10, cell: func(r TableRow) string { return r.Location }}
	messageColumn = column{title: "MESSAGE", min: 35, cell: func(r TableRow) string { return r.Message }}
	ruleColumn    = column{title: "RULE", min: 8, cell: func(r TableRow) string { return r.RuleID }}
)

// layout is a set of columns with widths fitted to their rows.
type layout struct {
	cols   []column
	widths []int
}

func (l layout) total() int {
	sum := cellGap*(len(l.cols)+1) + fixableCellWidth
	for _, w := range l.widths {
		sum += w
	}
	return sum
}

// TableFormatter formats diagnostics as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a table formatter for a terminal of termWidth
// columns; zero or less means the default width.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, colorEnabled: colorEnabled, termWidth: termWidth}
}

// fit sizes every column to its widest cell, then gives back width from
// MESSAGE and, if still needed, FILE until the table fits the terminal.
func (t *TableFormatter) fit(cols []column, rows []TableRow) layout {
	l := layout{cols: cols, widths: make([]int, len(cols))}
	for i, c := range cols {
		l.widths[i] = c.min
		for _, r := range rows {
			l.widths[i] = max(l.widths[i], runewidth.StringWidth(c.cell(r)))
		}
	}
	for _, shrink := range []string{messageColumn.title, fileColumn.title} {
		excess := l.total() - t.termWidth
		if excess <= 0 {
			break
		}
		for i, c := range cols {
			if c.title == shrink {
				l.widths[i] = max(c.min, l.widths[i]-excess)
			}
		}
	}
	return l
}

// FormatTable formats every file's findings in one table, files separated
// by a light rule.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil {
		return ""
	}
	var groups [][]TableRow
	var all []TableRow
	for _, file := range result.Files {
		if rows := fileRows(file); len(rows) > 0 {
			groups = append(groups, rows)
			all = append(all, rows...)
		}
	}
	if len(groups) == 0 {
		return ""
	}

	l := t.fit([]column{fileColumn, locColumn, messageColumn, ruleColumn}, all)
	var b strings.Builder
	t.header(&b, l)
	for i, rows := range groups {
		if i > 0 {
			t.rule(&b, l, "-")
		}
		for _, r := range rows {
			t.row(&b, l, r)
		}
	}
	t.rule(&b, l, "=")
	b.WriteString(t.legend() + "\n")
	return b.String()
}

// FormatFileTable formats one file's findings; the caller prints the path.
func (t *TableFormatter) FormatFileTable(file runner.FileOutcome) string {
	rows := fileRows(file)
	if len(rows) == 0 {
		return ""
	}

	l := t.fit([]column{locColumn, messageColumn, ruleColumn}, rows)
	var b strings.Builder
	t.header(&b, l)
	for _, r := range rows {
		t.row(&b, l, r)
	}
	t.rule(&b, l, "=")

	var errs, warnings, infos, fixable int
	for _, r := range rows {
		switch r.Severity {
		case config.SeverityError:
			errs++
		case config.SeverityWarning:
			warnings++
		case config.SeverityInfo:
			infos++
		}
		if r.Fixable {
			fixable++
		}
	}
	b.WriteString(t.countsLine(nil, errs, warnings, infos, fixable) + "\n")
	return b.String()
}

// FormatTableSummary formats run totals as one pipe-separated line.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	line := t.countsLine([]string{fmt.Sprintf("%d files checked", stats.FilesProcessed)},
		stats.DiagnosticsBySeverity["error"],
		stats.DiagnosticsBySeverity["warning"],
		stats.DiagnosticsBySeverity["info"],
		stats.DiagnosticsFixable)
	if duration != "" {
		line += " | " + t.styles.Dim.Render(duration)
	}
	return line
}

func (t *TableFormatter) countsLine(parts []string, errs, warnings, infos, fixable int) string {
	add := func(n int, style lipgloss.Style, label string) {
		if n > 0 {
			parts = append(parts, style.Render(fmt.Sprintf("%d %s", n, label)))
		}
	}
	add(errs, t.styles.Error, "errors")
	add(warnings, t.styles.Warning, "warnings")
	add(infos, t.styles.Info, "info")
	add(fixable, t.styles.TableFixable, "fixable")
	return " " + strings.Join(parts, " | ")
}

func (t *TableFormatter) header(b *strings.Builder, l layout) {
	cells := make([]string, len(l.cols))
	for i, c := range l.cols {
		cells[i] = runewidth.FillRight(c.title, l.widths[i])
	}
	b.WriteString(t.styles.TableHeader.Render(" "+strings.Join(cells, "  ")+"   ") + "\n")
	t.rule(b, l, "=")
}

func (t *TableFormatter) rule(b *strings.Builder, l layout, char string) {
	b.WriteString(t.styles.TableSeparator.Render(strings.Repeat(char, l.total())) + "\n")
}

func (t *TableFormatter) row(b *strings.Builder, l layout, r TableRow) {
	cells := make([]string, len(l.cols))
	for i, c := range l.cols {
		text := c.cell(r)
		if c.keepTail {
			text = truncateLeft(text, l.widths[i])
		} else {
			text = runewidth.Truncate(text, l.widths[i], "...")
		}
		cells[i] = runewidth.FillRight(text, l.widths[i])
	}
	marker := " "
	if r.Fixable {
		marker = t.styles.TableFixable.Render(fixableSymbol)
	}
	content := " " + strings.Join(cells, "  ") + "  " + marker
	b.WriteString(t.rowStyle(r.Severity).Render(content) + "\n")
}

func (t *TableFormatter) rowStyle(sev config.Severity) lipgloss.Style {
	switch sev {
	case config.SeverityError:
		return t.styles.TableErrorRow
	case config.SeverityWarning:
		return t.styles.TableWarnRow
	case config.SeverityInfo:
		return t.styles.TableInfoRow
	}
	return lipgloss.NewStyle()
}

func (t *TableFormatter) legend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: E = error | W = warning | " + fixableSymbol + " = has a correction")
	}
	return t.styles.TableLegend.Render(fmt.Sprintf(" Legend: %s = error  %s = warning  %s = has a correction",
		t.styles.TableErrorRow.Render(" error "),
		t.styles.TableWarnRow.Render(" warning "),
		t.styles.TableFixable.Render(fixableSymbol)))
}

func fileRows(file runner.FileOutcome) []TableRow {
	if file.Result == nil || file.Result.FileResult == nil {
		return nil
	}
	diags := file.Result.Diagnostics
	rows := make([]TableRow, 0, len(diags))
	for i := range diags {
		rows = append(rows, DiagnosticToTableRow(file.Path, &diags[i]))
	}
	return rows
}

// truncateLeft keeps the end of s, which for a path is the file name.
func truncateLeft(s string, width int) string {
	over := runewidth.StringWidth(s) - width
	switch {
	case over <= 0:
		return s
	case width <= 3:
		return runewidth.TruncateLeft(s, over, "")
	}
	return runewidth.TruncateLeft(s, over+3, "...")
}
