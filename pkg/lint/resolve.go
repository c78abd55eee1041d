package lint

import (
	"slices"

	"github.com/yaklabco/flowfix/pkg/config"
)

// ResolvedRule pairs a Rule with its resolved configuration.
type ResolvedRule struct {
	// Rule is the underlying rule implementation.
	Rule Rule

	// Enabled indicates whether the rule should be run.
	Enabled bool

	// Severity is the resolved severity for diagnostics from this rule.
	Severity config.Severity

	// AutoFix indicates whether the preferred proposal is applied in fix
	// mode.
	AutoFix bool

	// Config is the rule-specific configuration (may be nil).
	Config *config.RuleConfig
}

// ResolveRules determines which rules to run based on registry and config.
// Returns only enabled rules with their resolved configuration.
func ResolveRules(registry *Registry, cfg *config.Config) []ResolvedRule {
	var resolved []ResolvedRule
	for _, rule := range registry.Rules() {
		if rr := resolveRule(registry, rule, cfg); rr.Enabled {
			resolved = append(resolved, rr)
		}
	}
	return resolved
}

func resolveRule(registry *Registry, rule Rule, cfg *config.Config) ResolvedRule {
	rr := ResolvedRule{
		Rule:     rule,
		Enabled:  rule.DefaultEnabled(),
		Severity: rule.DefaultSeverity(),
		AutoFix:  rule.CanFix(),
	}
	if cfg == nil {
		return rr
	}

	if sc, ok := rule.(SeverityConfigurer); ok {
		if sev, set := sc.ConfiguredSeverity(cfg); set {
			rr.Severity = sev
		}
	}

	// CLI lists accept IDs, names and aliases.
	names := func(keys []string) bool {
		return slices.ContainsFunc(keys, func(key string) bool {
			id, _, found := registry.Resolve(key)
			return found && id == rule.ID()
		})
	}
	if names(cfg.EnableRules) {
		rr.Enabled = true
	}
	if names(cfg.DisableRules) {
		rr.Enabled = false
	}

	ruleCfg, ok := cfg.Rules[rule.ID()]
	if !ok {
		ruleCfg, ok = cfg.Rules[rule.Name()]
	}
	if ok {
		rr.Config = &ruleCfg
		if ruleCfg.Enabled != nil {
			rr.Enabled = *ruleCfg.Enabled
		}
		if ruleCfg.Severity != nil {
			rr.Severity = config.Severity(*ruleCfg.Severity)
		}
		if ruleCfg.AutoFix != nil {
			rr.AutoFix = *ruleCfg.AutoFix && rule.CanFix()
		}
	}

	if len(cfg.FixRules) > 0 {
		rr.AutoFix = rule.CanFix() && names(cfg.FixRules)
	}

	if !cfg.Fix {
		rr.AutoFix = false
	}

	return rr
}
