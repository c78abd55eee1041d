package lint

import "github.com/yaklabco/flowfix/pkg/config"

// BaseRule provides a default implementation of the Rule interface.
// Embed it in rule implementations and override methods as needed.
type BaseRule struct {
	id       string
	name     string
	desc     string
	severity config.Severity
	tags     []string
	fixable  bool
}

// NewBaseRule creates a BaseRule with the given properties.
func NewBaseRule(id, name, desc string, severity config.Severity, tags []string, fixable bool) BaseRule {
	return BaseRule{
		id:       id,
		name:     name,
		desc:     desc,
		severity: severity,
		tags:     tags,
		fixable:  fixable,
	}
}

// ID returns the unique identifier for this rule.
func (r *BaseRule) ID() string {
	return r.id
}

// Name returns the human-readable name of the rule.
func (r *BaseRule) Name() string {
	return r.name
}

// Description returns what the rule checks.
func (r *BaseRule) Description() string {
	return r.desc
}

// DefaultEnabled returns true. Override to make a rule opt-in.
func (r *BaseRule) DefaultEnabled() bool {
	return true
}

// DefaultSeverity returns the severity given at construction, or warning.
func (r *BaseRule) DefaultSeverity() config.Severity {
	if r.severity == "" {
		return config.SeverityWarning
	}
	return r.severity
}

// Tags returns categorization tags for this rule.
func (r *BaseRule) Tags() []string {
	return r.tags
}

// CanFix returns whether this rule produces corrections.
func (r *BaseRule) CanFix() bool {
	return r.fixable
}

// Apply must be overridden by concrete rules. It returns no diagnostics.
func (r *BaseRule) Apply(_ *RuleContext) ([]Diagnostic, error) {
	return nil, nil
}
