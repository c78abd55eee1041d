// Package reporter writes check results as styled text, tables, JSON,
// SARIF, unified diffs or summary tables.
package reporter

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/flowfix/internal/ui/pretty"
	"github.com/yaklabco/flowfix/pkg/analysis"
	"github.com/yaklabco/flowfix/pkg/runner"
)

// Reporter writes one check run and returns how many findings it reported.
type Reporter interface {
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// Renderer writes a precomputed analysis.Report. Renderers hold no state
// between calls.
type Renderer interface {
	Render(ctx context.Context, report *analysis.Report) error
}

// constructors maps every output format to its reporter.
var constructors = map[Format]func(Options) Reporter{
	FormatText:  func(o Options) Reporter { return NewTextReporter(o) },
	FormatTable: func(o Options) Reporter { return NewTableReporter(o) },
	FormatDiff:  func(o Options) Reporter { return NewDiffReporter(o) },
	FormatSARIF: func(o Options) Reporter { return NewSARIFReporter(o) },
	FormatJSON:  func(o Options) Reporter { return analyzed(NewJSONRenderer(o), o) },
	FormatSummary: func(o Options) Reporter {
		return analyzed(NewSummaryRenderer(o), o)
	},
}

// New creates the reporter for opts.Format, text when it is empty.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	build, ok := constructors[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, opts.Format)
	}
	return build(opts), nil
}

// analysisReporter runs analysis.Analyze before a Renderer.
type analysisReporter struct {
	renderer Renderer
	opts     analysis.Options
}

func analyzed(r Renderer, opts Options) *analysisReporter {
	aopts := analysis.DefaultOptions()
	aopts.WorkingDir = opts.WorkingDir
	return &analysisReporter{renderer: r, opts: aopts}
}

// Report implements Reporter.
func (a *analysisReporter) Report(ctx context.Context, result *runner.Result) (int, error) {
	report := analysis.Analyze(result, a.opts)
	if err := a.renderer.Render(ctx, report); err != nil {
		return 0, fmt.Errorf("render: %w", err)
	}
	return report.Totals.Issues, nil
}

// output is the buffered, styled writer every terminal reporter shares.
type output struct {
	opts   Options
	styles *pretty.Styles
	color  bool
	bw     *bufio.Writer
}

func newOutput(opts Options) output {
	color := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return output{
		opts:   opts,
		styles: pretty.NewStyles(color),
		color:  color,
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// flush writes out the buffer; a flush failure does not hide an earlier
// error.
func (o *output) flush(err *error) {
	if ferr := o.bw.Flush(); *err == nil && ferr != nil {
		*err = fmt.Errorf("flush: %w", ferr)
	}
}

// path shows p relative to the working directory when both are absolute.
func (o *output) path(p string) string {
	return displayPath(p, o.opts.WorkingDir)
}

func (o *output) fileError(path string, err error) {
	fmt.Fprintf(o.bw, "%s: %s\n",
		o.styles.FilePath.Render(o.path(path)),
		o.styles.Error.Render("error: "+err.Error()))
}

func (o *output) line(s string) {
	fmt.Fprintln(o.bw, s)
}

// plural returns "n word", pluralized unless n is one.
func plural(n int, word string) string {
	switch {
	case n == 1:
	case strings.HasSuffix(word, "x"), strings.HasSuffix(word, "s"):
		word += "es"
	default:
		word += "s"
	}
	return fmt.Sprintf("%d %s", n, word)
}

func displayPath(path, workDir string) string {
	if workDir == "" || !filepath.IsAbs(path) {
		return path
	}
	if rel, err := filepath.Rel(workDir, path); err == nil {
		return rel
	}
	return path
}
