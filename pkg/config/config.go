// Package config defines the configuration types for flowfix. The types are
// plain data with yaml and toml tags; discovery and merging live in
// internal/configloader.
package config

import "slices"

// Severity represents the severity level of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// RuleConfig holds per-rule settings. Nil fields inherit the rule default.
type RuleConfig struct {
	Enabled  *bool          `yaml:"enabled,omitempty"  toml:"enabled,omitempty"`
	Severity *string        `yaml:"severity,omitempty" toml:"severity,omitempty"`
	AutoFix  *bool          `yaml:"auto_fix,omitempty" toml:"auto_fix,omitempty"`
	Options  map[string]any `yaml:"options,omitempty"  toml:"options,omitempty"`
}

// AnalysisConfig holds the flags the flow analyzers consult.
type AnalysisConfig struct {
	// AssertionsEnabled treats assert statements as executed, so code after
	// "assert false" is dead.
	AssertionsEnabled *bool `yaml:"assertions_enabled,omitempty" toml:"assertions_enabled,omitempty"`

	// NullAnalysis enables null state tracking.
	NullAnalysis *bool `yaml:"null_analysis,omitempty" toml:"null_analysis,omitempty"`

	// UnusedVariableSeverity is "warning" or "info".
	UnusedVariableSeverity string `yaml:"unused_variable_severity,omitempty" toml:"unused_variable_severity,omitempty"`
}

// FormatConfig controls how generated code is laid out.
type FormatConfig struct {
	TabWidth   int    `yaml:"tab_width,omitempty"   toml:"tab_width,omitempty"`
	IndentUnit string `yaml:"indent_unit,omitempty" toml:"indent_unit,omitempty"`
}

// BackupsConfig controls backups when fixing files.
type BackupsConfig struct {
	Enabled *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// OutputFormats lists the supported output formats.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatTable, FormatJSON, FormatSARIF, FormatDiff, FormatSummary}
}

// IsValid reports whether f is a supported output format.
func (f OutputFormat) IsValid() bool {
	return slices.Contains(OutputFormats(), f)
}

// RuleFormat controls how rule identifiers appear in output.
type RuleFormat string

const (
	RuleFormatName     RuleFormat = "name"     // "unreachable-code"
	RuleFormatID       RuleFormat = "id"       // "FLOW001"
	RuleFormatCombined RuleFormat = "combined" // "FLOW001/unreachable-code"
)

// SummaryOrder controls the order of tables in summary output.
type SummaryOrder string

const (
	SummaryOrderRules SummaryOrder = "rules"
	SummaryOrderFiles SummaryOrder = "files"
)

// IsValid returns true if the summary order is valid.
func (s SummaryOrder) IsValid() bool {
	return s == SummaryOrderRules || s == SummaryOrderFiles
}

// Defaults.
const (
	DefaultTabWidth   = 4
	DefaultIndentUnit = "    "
	DefaultMaxPasses  = 5
)

// Config is the root configuration.
type Config struct {
	// Rules holds per-rule settings keyed by rule ID or name.
	Rules map[string]RuleConfig `yaml:"rules,omitempty" toml:"rules,omitempty"`

	Analysis AnalysisConfig `yaml:"analysis,omitempty" toml:"analysis,omitempty"`
	Format   FormatConfig   `yaml:"format,omitempty"   toml:"format,omitempty"`

	// Extensions are the file extensions treated as sources.
	Extensions []string `yaml:"extensions,omitempty" toml:"extensions,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore,omitempty"`

	Backups BackupsConfig `yaml:"backups,omitempty" toml:"backups,omitempty"`

	// CLI-level options, not persisted to config files.

	Fix          bool         `yaml:"-" toml:"-"`
	DryRun       bool         `yaml:"-" toml:"-"`
	Output       OutputFormat `yaml:"-" toml:"-"`
	RuleFormat   RuleFormat   `yaml:"-" toml:"-"`
	SummaryOrder SummaryOrder `yaml:"-" toml:"-"`
	Jobs         int          `yaml:"-" toml:"-"`
	EnableRules  []string     `yaml:"-" toml:"-"`
	DisableRules []string     `yaml:"-" toml:"-"`
	FixRules     []string     `yaml:"-" toml:"-"`
	NoBackups    bool         `yaml:"-" toml:"-"`

	// Strict makes warnings fail the run.
	Strict bool `yaml:"-" toml:"-"`

	// MaxPasses bounds the fix loop per file.
	MaxPasses int `yaml:"-" toml:"-"`
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Rules: make(map[string]RuleConfig),
		Analysis: AnalysisConfig{
			AssertionsEnabled:      Bool(false),
			NullAnalysis:           Bool(true),
			UnusedVariableSeverity: string(SeverityWarning),
		},
		Format: FormatConfig{
			TabWidth:   DefaultTabWidth,
			IndentUnit: DefaultIndentUnit,
		},
		Extensions:   []string{".java"},
		Backups:      BackupsConfig{Enabled: Bool(true)},
		Output:       FormatText,
		RuleFormat:   RuleFormatName,
		SummaryOrder: SummaryOrderRules,
		MaxPasses:    DefaultMaxPasses,
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// BackupsEnabled reports whether fixing should write backups.
func (c *Config) BackupsEnabled() bool {
	if c.NoBackups {
		return false
	}
	return c.Backups.Enabled == nil || *c.Backups.Enabled
}

// AssertionsEnabled reports the effective assert policy.
func (c *Config) AssertionsEnabled() bool {
	return c.Analysis.AssertionsEnabled != nil && *c.Analysis.AssertionsEnabled
}

// NullAnalysis reports whether null tracking is on. It defaults to true.
func (c *Config) NullAnalysis() bool {
	return c.Analysis.NullAnalysis == nil || *c.Analysis.NullAnalysis
}
