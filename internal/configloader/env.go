package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/flowfix/pkg/config"
)

// envVarPrefix is the prefix for all flowfix environment variables.
const envVarPrefix = "FLOWFIX_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping defines an environment variable to config field mapping.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FIX":                      {"fix", envTypeBool, "Enable auto-fix: true or false"},
	"DRY_RUN":                  {"dry_run", envTypeBool, "Dry-run mode: true or false"},
	"JOBS":                     {"jobs", envTypeInt, "Number of parallel workers (0 = auto)"},
	"FORMAT":                   {"format", envTypeString, "Output format: text, table, json, sarif, diff, or summary"},
	"STRICT":                   {"strict", envTypeBool, "Fail on warnings: true or false"},
	"BACKUPS_ENABLED":          {"backups.enabled", envTypeBool, "Keep a backup of fixed files: true or false"},
	"NO_BACKUPS":               {"no_backups", envTypeBool, "Disable backups: true or false"},
	"IGNORE":                   {"ignore", envTypeSlice, "Comma-separated list of ignore patterns"},
	"EXTENSIONS":               {"extensions", envTypeSlice, "Comma-separated list of source extensions"},
	"ASSERTIONS_ENABLED":       {"analysis.assertions_enabled", envTypeBool, "Treat assert statements as executed"},
	"NULL_ANALYSIS":            {"analysis.null_analysis", envTypeBool, "Report null dereferences: true or false"},
	"UNUSED_VARIABLE_SEVERITY": {"analysis.unused_variable_severity", envTypeString, "Severity of unused-variable: warning or info"},
	"TAB_WIDTH":                {"format.tab_width", envTypeInt, "Columns per tab stop"},
	"INDENT_UNIT":              {"format.indent_unit", envTypeString, "One indentation level, e.g. four spaces or a tab"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with FLOWFIX_ (e.g., FLOWFIX_FIX).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}
	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "format":
		cfg.Output = config.OutputFormat(value)
	case "analysis.unused_variable_severity":
		cfg.Analysis.UnusedVariableSeverity = value
	case "format.indent_unit":
		cfg.Format.IndentUnit = unescapeIndent(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "fix":
		cfg.Fix = value
	case "dry_run":
		cfg.DryRun = value
	case "strict":
		cfg.Strict = value
	case "backups.enabled":
		cfg.Backups.Enabled = config.Bool(value)
	case "no_backups":
		cfg.NoBackups = value
	case "analysis.assertions_enabled":
		cfg.Analysis.AssertionsEnabled = config.Bool(value)
	case "analysis.null_analysis":
		cfg.Analysis.NullAnalysis = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	case "format.tab_width":
		cfg.Format.TabWidth = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	case "extensions":
		cfg.Extensions = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// unescapeIndent turns each literal "\t" into a tab.
func unescapeIndent(value string) string {
	return strings.ReplaceAll(value, `\t`, "\t")
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their
// descriptions.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		out[envVarPrefix+suffix] = mapping.help
	}
	return out
}

// EnvVarNames returns the supported environment variable names, sorted.
func EnvVarNames() []string {
	names := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		names = append(names, envVarPrefix+suffix)
	}
	sort.Strings(names)
	return names
}
