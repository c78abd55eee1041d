// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yaklabco/flowfix/pkg/config"
)

// ANSI palette indexes shared by every style.
const (
	colorRed    = "9"
	colorGreen  = "10"
	colorYellow = "11"
	colorBlue   = "12"
	colorCyan   = "14"
	colorTeal   = "6"
	colorGray   = "8"
	colorSilver = "7"
)

// Styles holds the renderers for findings, proposals, diffs, summaries,
// tables and command help. Every field is a plain style when color is off.
type Styles struct {
	Error, Warning, Info lipgloss.Style

	// Findings and their correction proposals.
	FilePath, RuleID, Message lipgloss.Style
	Suggestion, Proposal      lipgloss.Style
	SourceLine, Caret         lipgloss.Style

	// Unified diffs of applied or previewed corrections.
	DiffHeader, DiffHunk, DiffContext lipgloss.Style
	DiffAdd, DiffRemove               lipgloss.Style

	SummaryTitle, SummaryValue lipgloss.Style
	Success, Failure           lipgloss.Style

	TableHeader, TableLegend, TableSeparator lipgloss.Style
	TableErrorRow, TableWarnRow, TableInfoRow lipgloss.Style
	TableFixable                              lipgloss.Style

	// Command help.
	Heading, Command, Flag lipgloss.Style

	Dim, Bold lipgloss.Style
}

// NewStyles creates the style set, colored or plain.
func NewStyles(colorEnabled bool) *Styles {
	fg := func(c string) lipgloss.Style {
		if !colorEnabled {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	bold := func(s lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return s
		}
		return s.Bold(true)
	}
	italic := func(s lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return s
		}
		return s.Italic(true)
	}
	plain := lipgloss.NewStyle()

	return &Styles{
		Error:   bold(fg(colorRed)),
		Warning: bold(fg(colorYellow)),
		Info:    bold(fg(colorBlue)),

		FilePath:   bold(plain),
		RuleID:     fg(colorGray),
		Message:    plain,
		Suggestion: italic(fg(colorGreen)),
		Proposal:   fg(colorTeal),
		SourceLine: fg(colorSilver),
		Caret:      fg(colorRed),

		DiffHeader:  bold(plain),
		DiffHunk:    fg(colorCyan),
		DiffContext: fg(colorGray),
		DiffAdd:     fg(colorGreen),
		DiffRemove:  fg(colorRed),

		SummaryTitle: bold(plain),
		SummaryValue: plain,
		Success:      bold(fg(colorGreen)),
		Failure:      bold(fg(colorRed)),

		TableHeader:    bold(fg(colorSilver)),
		TableLegend:    italic(fg(colorGray)),
		TableSeparator: fg(colorGray),
		TableErrorRow:  fg(colorRed),
		TableWarnRow:   fg(colorYellow),
		TableInfoRow:   fg(colorBlue),
		TableFixable:   fg(colorGreen),

		Heading: bold(fg(colorYellow)),
		Command: bold(fg(colorCyan)),
		Flag:    fg(colorBlue),

		Dim:  fg(colorGray),
		Bold: bold(plain),
	}
}

// ForSeverity returns the label style of a severity.
func (s *Styles) ForSeverity(sev config.Severity) lipgloss.Style {
	switch sev {
	case config.SeverityError:
		return s.Error
	case config.SeverityWarning:
		return s.Warning
	default:
		return s.Info
	}
}

// IsColorEnabled resolves a --color mode against the writer. "always" and
// "never" are absolute. Anything else means auto: color only on a terminal
// and only when NO_COLOR is unset.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
