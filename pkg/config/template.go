package config

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full lists every rule with its documentation.
	Full bool

	// Format is "yaml" or "toml".
	Format string

	// IncludeRules limits the listed rules. Empty means all rules.
	IncludeRules []string
}

// RuleInfo contains rule metadata for template generation.
type RuleInfo struct {
	ID          string
	Name        string
	Description string
	Enabled     bool
	Severity    Severity
	Tags        []string
	CanFix      bool
}

// RuleInfoProvider returns rule information. It decouples this package from
// the rule registry.
type RuleInfoProvider func() []RuleInfo

// DefaultRuleInfoProvider is set by the rules package during init.
//
//nolint:gochecknoglobals // Extension point for rule info.
var DefaultRuleInfoProvider RuleInfoProvider

// DefaultTemplateHeader returns the header for generated configs.
func DefaultTemplateHeader() string {
	return "# flowfix configuration\n# See: https://github.com/yaklabco/flowfix"
}

// GenerateTemplate creates a commented configuration file.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	var w templateWriter
	switch opts.Format {
	case "", "yaml", "yml":
		w = yamlTemplate{}
	case "toml":
		w = tomlTemplate{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader() + "\n\n")
	w.settings(&buf, opts.Full)
	if opts.Full {
		for _, rule := range selectRules(opts.IncludeRules) {
			w.rule(&buf, rule)
		}
	} else {
		w.exampleRule(&buf)
	}
	return buf.Bytes(), nil
}

type templateWriter interface {
	settings(buf *bytes.Buffer, full bool)
	rule(buf *bytes.Buffer, rule RuleInfo)
	exampleRule(buf *bytes.Buffer)
}

func commentOut(text string, prefix string, full bool) string {
	if full {
		return text
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		if l != "" && !strings.HasPrefix(l, "#") && !strings.HasPrefix(l, "[") {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

type yamlTemplate struct{}

func (yamlTemplate) settings(buf *bytes.Buffer, full bool) {
	buf.WriteString(commentOut(`# Source file extensions
extensions:
  - ".java"

# File patterns to skip (glob patterns)
ignore:
  - "build/**"
  - "target/**"

# Flow analysis flags
analysis:
  assertions_enabled: false
  null_analysis: true
  unused_variable_severity: warning

# Layout of generated code
format:
  tab_width: 4
  indent_unit: "    "

# Keep a .flowfix.orig copy of every fixed file
backups:
  enabled: true
`, "# ", full))
	buf.WriteString("\n# Rule-specific configuration\nrules:\n")
}

func (yamlTemplate) rule(buf *bytes.Buffer, rule RuleInfo) {
	fmt.Fprintf(buf, "\n  # %s: %s\n", rule.ID, rule.Name)
	fmt.Fprintf(buf, "  # %s\n", wrapComment(rule.Description, "  # "))
	if len(rule.Tags) > 0 {
		fmt.Fprintf(buf, "  # Tags: %s\n", strings.Join(rule.Tags, ", "))
	}
	if rule.CanFix {
		buf.WriteString("  # Auto-fix: yes\n")
	}
	fmt.Fprintf(buf, "  %s:\n    enabled: %t\n    severity: %s\n", rule.ID, rule.Enabled, rule.Severity)
}

func (yamlTemplate) exampleRule(buf *bytes.Buffer) {
	buf.WriteString("#  FLOW008:\n#    severity: info\n#  unreachable-code:\n#    auto_fix: false\n")
}

type tomlTemplate struct{}

func (tomlTemplate) settings(buf *bytes.Buffer, full bool) {
	buf.WriteString(commentOut(`# Source file extensions
extensions = [".java"]

# File patterns to skip (glob patterns)
ignore = ["build/**", "target/**"]

# Flow analysis flags
[analysis]
assertions_enabled = false
null_analysis = true
unused_variable_severity = "warning"

# Layout of generated code
[format]
tab_width = 4
indent_unit = "    "

# Keep a .flowfix.orig copy of every fixed file
[backups]
enabled = true
`, "# ", full))
}

func (tomlTemplate) rule(buf *bytes.Buffer, rule RuleInfo) {
	fmt.Fprintf(buf, "\n# %s: %s\n", rule.ID, rule.Name)
	fmt.Fprintf(buf, "# %s\n", wrapComment(rule.Description, "# "))
	if rule.CanFix {
		buf.WriteString("# Auto-fix: yes\n")
	}
	fmt.Fprintf(buf, "[rules.%s]\nenabled = %t\nseverity = %q\n", rule.ID, rule.Enabled, rule.Severity)
}

func (tomlTemplate) exampleRule(buf *bytes.Buffer) {
	buf.WriteString("\n# Rule-specific configuration\n# [rules.FLOW008]\n# severity = \"info\"\n")
}

func selectRules(include []string) []RuleInfo {
	rules := ruleInfos()
	if len(include) > 0 {
		rules = slices.DeleteFunc(rules, func(r RuleInfo) bool {
			return !slices.Contains(include, r.ID) && !slices.Contains(include, r.Name)
		})
	}
	slices.SortFunc(rules, func(a, b RuleInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	return rules
}

func ruleInfos() []RuleInfo {
	if DefaultRuleInfoProvider != nil {
		return DefaultRuleInfoProvider()
	}
	return nil
}

// wrapComment wraps text at commentWrapWidth, continuing lines with prefix.
func wrapComment(text, prefix string) string {
	if len(text) <= commentWrapWidth {
		return text
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= commentWrapWidth:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return strings.Join(lines, "\n"+prefix)
}
