package pretty

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
)

// TabWidth is the number of columns a tab occupies in source context.
const TabWidth = 4

// contextIndent aligns source context under the diagnostic line.
const contextIndent = "        "

// FormatDiagnostic formats a single diagnostic for terminal output.
// Uses ID format for backwards compatibility.
func (s *Styles) FormatDiagnostic(diag *lint.Diagnostic, showContext bool, sourceLine string) string {
	return s.FormatDiagnosticWithFormat(diag, showContext, sourceLine, config.RuleFormatID)
}

// FormatDiagnosticWithFormat formats a diagnostic with configurable rule identifier format.
func (s *Styles) FormatDiagnosticWithFormat(diag *lint.Diagnostic, showContext bool, sourceLine string, ruleFormat config.RuleFormat) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(diag.FilePath),
		diag.StartLine,
		diag.StartColumn,
	)

	ruleIdentifier := config.FormatRuleID(ruleFormat, diag.RuleID, diag.RuleName)

	fmt.Fprintf(&builder, "  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
		s.RuleID.Render("("+ruleIdentifier+")"),
	)

	if showContext && sourceLine != "" {
		width := 1
		if diag.EndLine == diag.StartLine && diag.EndColumn > diag.StartColumn {
			width = diag.EndColumn - diag.StartColumn
		}
		builder.WriteString(s.FormatSourceSpan(sourceLine, diag.StartColumn, width))
	}

	if diag.Suggestion != "" {
		line := "    " + s.Dim.Render("Suggestion:") + " " + s.Suggestion.Render(diag.Suggestion)
		if more := len(diag.Proposals) - 1; more > 0 {
			line += s.Dim.Render(fmt.Sprintf(" (+%d more)", more))
		}
		builder.WriteString(line + "\n")
	}

	return builder.String()
}

// FormatProposals lists every proposal label, preferred first.
func (s *Styles) FormatProposals(diag *lint.Diagnostic) string {
	if len(diag.Proposals) == 0 {
		return ""
	}
	var builder strings.Builder
	for i, p := range diag.Proposals {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(&builder, "      %s %s %s\n", marker, s.Proposal.Render(p.Label), s.Dim.Render("["+string(p.Kind)+"]"))
	}
	return builder.String()
}

// FormatSeverity returns a styled severity string. Unknown severities are
// printed as is.
func (s *Styles) FormatSeverity(sev config.Severity) string {
	if !sev.IsValid() {
		return string(sev)
	}
	return s.ForSeverity(sev).Render(string(sev))
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	return s.FormatSourceSpan(line, column, 1)
}

// FormatSourceSpan formats the source line and underlines width bytes
// starting at the 1-based byte column. Tabs are expanded and wide runes
// take their display width, so the marker lines up in a terminal.
func (s *Styles) FormatSourceSpan(line string, column, width int) string {
	var builder strings.Builder

	builder.WriteString(contextIndent + s.SourceLine.Render(expandTabs(line)) + "\n")

	if column <= 0 {
		return builder.String()
	}

	start := min(column-1, len(line))
	end := min(start+max(width, 1), len(line))
	lead := runewidth.StringWidth(expandTabs(line[:start]))
	span := max(runewidth.StringWidth(expandTabsFrom(line[start:end], lead)), 1)

	marker := "^" + strings.Repeat("~", span-1)
	builder.WriteString(contextIndent + strings.Repeat(" ", lead) + s.Caret.Render(marker) + "\n")

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	switch {
	case issueCount == 1:
		header += s.Dim.Render(" (1 issue)")
	case issueCount > 1:
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}

func expandTabs(text string) string {
	return expandTabsFrom(text, 0)
}

// expandTabsFrom expands tabs for text that starts at display column col.
func expandTabsFrom(text string, col int) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	var b strings.Builder
	for _, r := range text {
		if r == '\t' {
			n := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
