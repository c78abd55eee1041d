package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/flowfix/internal/ui/pretty"
	"github.com/yaklabco/flowfix/pkg/lint/rules"
)

// Command annotations that add reference sections to help output.
const (
	helpShowPacks     = "flowfix/help-packs"
	helpShowExitCodes = "flowfix/help-exit-codes"
)

// helpRow is one aligned line of a help section.
type helpRow struct {
	left, right string
}

// helpWriter renders command help with the pretty styles.
type helpWriter struct {
	st *pretty.Styles
}

// installHelp replaces cobra's template help on root and, by inheritance,
// on every subcommand. The --color flag is resolved when help is printed so
// that "flowfix --color never check --help" is honored.
func installHelp(root *cobra.Command) {
	writerFor := func(cmd *cobra.Command, out io.Writer) *helpWriter {
		mode := "auto"
		if f := cmd.Flag("color"); f != nil {
			mode = f.Value.String()
		}
		return &helpWriter{st: pretty.NewStyles(pretty.IsColorEnabled(mode, out))}
	}

	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		if _, err := io.WriteString(out, writerFor(cmd, out).render(cmd, true)); err != nil {
			cmd.PrintErrln(err)
		}
	})
	root.SetUsageFunc(func(cmd *cobra.Command) error {
		out := cmd.OutOrStderr()
		_, err := io.WriteString(out, writerFor(cmd, out).render(cmd, false))
		return err
	})
}

// withHelpSections marks cmd to show the named reference sections.
func withHelpSections(cmd *cobra.Command, keys ...string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string, len(keys))
	}
	for _, k := range keys {
		cmd.Annotations[k] = "true"
	}
	return cmd
}

func (h *helpWriter) render(cmd *cobra.Command, full bool) string {
	var b strings.Builder

	if full {
		b.WriteString(h.st.Command.Render(cmd.CommandPath()))
		if cmd.Version != "" {
			b.WriteString(" " + h.st.Dim.Render(cmd.Version))
		}
		b.WriteString("\n\n")
		text := cmd.Long
		if text == "" {
			text = cmd.Short
		}
		if text = trimLines(text); text != "" {
			b.WriteString(text + "\n\n")
		}
	}

	b.WriteString(h.st.Heading.Render("Usage:") + "\n")
	if cmd.Runnable() {
		b.WriteString("  " + h.st.Command.Render(cmd.UseLine()) + "\n")
	}
	if cmd.HasAvailableSubCommands() {
		b.WriteString("  " + h.st.Command.Render(cmd.CommandPath()+" [command]") + "\n")
	}

	if len(cmd.Aliases) > 0 {
		h.section(&b, "Aliases:", "  "+h.st.Dim.Render(strings.Join(cmd.Aliases, ", "))+"\n")
	}
	if cmd.HasExample() {
		h.section(&b, "Examples:", h.st.Dim.Render(strings.TrimRight(cmd.Example, "\n"))+"\n")
	}
	if cmd.HasAvailableSubCommands() {
		h.section(&b, "Commands:", h.rows(commandRows(cmd), h.st.Command))
	}
	if cmd.HasAvailableLocalFlags() {
		h.section(&b, "Flags:", h.rows(flagRows(cmd.LocalFlags()), h.st.Flag))
	}
	if cmd.HasAvailableInheritedFlags() {
		h.section(&b, "Global Flags:", h.rows(flagRows(cmd.InheritedFlags()), h.st.Flag))
	}
	if cmd.Annotations[helpShowPacks] != "" {
		h.section(&b, "Rule packs:", h.rows(packRows(), h.st.Bold))
	}
	if cmd.Annotations[helpShowExitCodes] != "" {
		h.section(&b, "Exit codes:", h.rows(exitCodeRows(), h.st.Bold))
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&b, "\nUse %q for more information about a command.\n", cmd.CommandPath()+" [command] --help")
	}
	return b.String()
}

func (h *helpWriter) section(b *strings.Builder, title, body string) {
	b.WriteString("\n" + h.st.Heading.Render(title) + "\n" + body)
}

// rows aligns the right column on the widest left cell.
func (h *helpWriter) rows(rows []helpRow, left lipgloss.Style) string {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.left))
	}

	var b strings.Builder
	for _, r := range rows {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(r.left))
		fmt.Fprintf(&b, "  %s%s   %s\n", left.Render(r.left), pad, r.right)
	}
	return b.String()
}

func commandRows(cmd *cobra.Command) []helpRow {
	var rows []helpRow
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() || sub.Name() == "help" {
			rows = append(rows, helpRow{sub.Name(), sub.Short})
		}
	}
	return rows
}

func flagRows(fs *pflag.FlagSet) []helpRow {
	var rows []helpRow
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		left := "    --" + f.Name
		if f.Shorthand != "" {
			left = "-" + f.Shorthand + ", --" + f.Name
		}
		varname, usage := pflag.UnquoteUsage(f)
		if varname != "" {
			left += " " + varname
		}
		if def := flagDefault(f); def != "" {
			usage += " (default " + def + ")"
		}
		rows = append(rows, helpRow{left, usage})
	})
	return rows
}

// flagDefault returns the printable default of f, or "" for zero values.
func flagDefault(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "false", "0", "[]":
		return ""
	}
	if f.Value.Type() == "string" {
		return strconv.Quote(f.DefValue)
	}
	return f.DefValue
}

func packRows() []helpRow {
	packs := rules.Packs()
	rows := make([]helpRow, 0, len(packs))
	for _, p := range packs {
		rows = append(rows, helpRow{p.Name, fmt.Sprintf("%s (%d rules)", p.Description, len(p.Rules))})
	}
	return rows
}

func exitCodeRows() []helpRow {
	rows := make([]helpRow, 0, len(exitCodeTable))
	for _, e := range exitCodeTable {
		rows = append(rows, helpRow{strconv.Itoa(e.code), e.meaning})
	}
	return rows
}

// trimLines trims surrounding blank lines and trailing blanks on each line.
func trimLines(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
