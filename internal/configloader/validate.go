package configloader

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "rules.FLOW001.severity").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown rules).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Output != "" && !cfg.Output.IsValid() {
		result.fail("format", cfg.Output,
			"invalid format %q; must be one of: text, table, json, sarif, diff, summary", cfg.Output)
	}
	if cfg.SummaryOrder != "" && !cfg.SummaryOrder.IsValid() {
		result.fail("summary_order", cfg.SummaryOrder, "invalid summary order %q; must be rules or files", cfg.SummaryOrder)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.MaxPasses < 0 {
		result.fail("max_passes", cfg.MaxPasses, "max passes must be >= 0")
	}

	validateAnalysis(cfg, result)
	validateFormat(cfg, result)
	validateExtensions(cfg, result)
	validateRules(cfg, result)
	validateIgnorePatterns(cfg, result)

	return result
}

func validateAnalysis(cfg *config.Config, result *ValidationResult) {
	switch sev := config.Severity(cfg.Analysis.UnusedVariableSeverity); sev {
	case "", config.SeverityWarning, config.SeverityInfo:
	default:
		result.fail("analysis.unused_variable_severity", sev,
			"invalid severity %q; must be warning or info", sev)
	}
}

func validateFormat(cfg *config.Config, result *ValidationResult) {
	if cfg.Format.TabWidth < 0 {
		result.fail("format.tab_width", cfg.Format.TabWidth, "tab width must be >= 0 (0 means default)")
	}
	if unit := cfg.Format.IndentUnit; unit != "" && strings.Trim(unit, " \t") != "" {
		result.fail("format.indent_unit", unit, "indent unit must contain only spaces and tabs")
	}
}

func validateExtensions(cfg *config.Config, result *ValidationResult) {
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			result.fail(fmt.Sprintf("extensions[%d]", i), ext, "extension %q must start with a dot", ext)
		}
	}
}

// validateRules checks rule configurations for errors and warnings.
func validateRules(cfg *config.Config, result *ValidationResult) {
	registry := lint.DefaultRegistry

	for ruleID, ruleCfg := range cfg.Rules {
		if _, _, exists := registry.Resolve(ruleID); !exists {
			result.warn("rules."+ruleID, ruleID, "unknown rule %q; it will be ignored", ruleID)
		}
		if ruleCfg.Severity != nil && !config.Severity(*ruleCfg.Severity).IsValid() {
			result.fail("rules."+ruleID+".severity", *ruleCfg.Severity,
				"invalid severity %q; must be one of: error, warning, info", *ruleCfg.Severity)
		}
	}

	for _, list := range []struct {
		field string
		keys  []string
	}{
		{"enable", cfg.EnableRules},
		{"disable", cfg.DisableRules},
		{"fix_rules", cfg.FixRules},
	} {
		for _, key := range list.keys {
			if _, _, exists := registry.Resolve(key); !exists {
				result.warn(list.field, key, "unknown rule %q", key)
			}
		}
	}
}

// validateIgnorePatterns checks that ignore patterns compile.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

// IsValidSeverity returns true if the severity string is valid.
func IsValidSeverity(s string) bool {
	return config.Severity(s).IsValid()
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return f.IsValid()
}
