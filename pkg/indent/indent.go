// Package indent re-derives the indentation of source text moved between
// block nesting depths.
package indent

import "strings"

// Default settings used when a field is left zero.
const (
	DefaultTabWidth   = 4
	DefaultIndentUnit = "    "
)

// Options describes how one indentation level is written.
type Options struct {
	// TabWidth is the visual width of a tab character.
	TabWidth int

	// IndentUnit is the text of one indentation level, e.g. "\t" or "    ".
	IndentUnit string
}

func (o Options) normalized() Options {
	if o.TabWidth <= 0 {
		o.TabWidth = DefaultTabWidth
	}
	if o.IndentUnit == "" {
		o.IndentUnit = DefaultIndentUnit
	}
	return o
}

// Width returns the visual width of leading whitespace ws.
func (o Options) Width(ws string) int {
	o = o.normalized()
	w := 0
	for _, r := range ws {
		if r == '\t' {
			w += o.TabWidth - w%o.TabWidth
			continue
		}
		w++
	}
	return w
}

// UnitWidth returns the visual width of one indentation level.
func (o Options) UnitWidth() int {
	return o.Width(o.normalized().IndentUnit)
}

// Indent returns the text for level indentation levels.
func (o Options) Indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(o.normalized().IndentUnit, level)
}

// Level returns the number of whole indentation levels in ws.
func (o Options) Level(ws string) int {
	return o.Width(ws) / o.UnitWidth()
}

// Reindent rewrites the leading whitespace of every line after the first
// in text, moving it from sourceLevel to targetLevel. Lines indented by whole
// levels at or below sourceLevel are re-derived with IndentUnit. Lines with
// extra alignment keep that alignment and only have the part attributable to
// sourceLevel replaced. Lines shallower than sourceLevel are left untouched.
func (o Options) Reindent(text string, sourceLevel, targetLevel int) string {
	o = o.normalized()
	if sourceLevel == targetLevel || !strings.Contains(text, "\n") {
		return text
	}

	lines := strings.SplitAfter(text, "\n")
	var out strings.Builder
	out.Grow(len(text))
	out.WriteString(lines[0])
	for _, line := range lines[1:] {
		out.WriteString(o.reindentLine(line, sourceLevel, targetLevel))
	}
	return out.String()
}

func (o Options) reindentLine(line string, sourceLevel, targetLevel int) string {
	body := strings.TrimLeft(line, " \t")
	ws := line[:len(line)-len(body)]
	if strings.TrimSpace(body) == "" {
		return line
	}

	unit := o.UnitWidth()
	sourceWidth := sourceLevel * unit
	width := o.Width(ws)
	if width < sourceWidth {
		return line
	}

	if extra := width - sourceWidth; extra%unit == 0 {
		return o.Indent(targetLevel+extra/unit) + body
	}

	// Find the byte boundary where sourceWidth columns end.
	w := 0
	for i, r := range ws {
		if w == sourceWidth {
			return o.Indent(targetLevel) + ws[i:] + body
		}
		if w > sourceWidth {
			break
		}
		if r == '\t' {
			w += o.TabWidth - w%o.TabWidth
		} else {
			w++
		}
	}
	return line
}
