package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/flowfix/pkg/config"
)

const bufWriterSize = 64 << 10

// Options controls what a reporter writes and where.
type Options struct {
	Writer io.Writer
	Format Format

	// Color is "auto", "always" or "never".
	Color string

	// Text output.
	ShowContext   bool // print the offending source line
	ShowProposals bool // list every proposal, not only the preferred one
	GroupByFile   bool
	RuleFormat    config.RuleFormat

	// Table output: one table per file.
	PerFile bool

	// JSON and SARIF output: no indentation.
	Compact bool

	SummaryOrder config.SummaryOrder
	ShowSummary  bool

	// WorkingDir, when set, makes absolute paths relative to it.
	WorkingDir string

	// ToolVersion is the driver version in SARIF output.
	ToolVersion string
}

// DefaultOptions writes colored text with context to stdout.
func DefaultOptions() Options {
	return Options{
		Writer:       os.Stdout,
		Format:       FormatText,
		Color:        "auto",
		ShowContext:  true,
		GroupByFile:  true,
		RuleFormat:   config.RuleFormatName,
		SummaryOrder: config.SummaryOrderRules,
		ShowSummary:  true,
		ToolVersion:  "dev",
	}
}

// OptionsFromConfig applies the output settings of cfg to DefaultOptions.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if cfg.Output != "" {
		opts.Format = cfg.Output
	}
	if cfg.RuleFormat != "" {
		opts.RuleFormat = cfg.RuleFormat
	}
	if cfg.SummaryOrder != "" {
		opts.SummaryOrder = cfg.SummaryOrder
	}
	return opts
}
