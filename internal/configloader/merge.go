package configloader

import "github.com/yaklabco/flowfix/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer values: override overwrites base if override is non-nil
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	mergeAnalysis(&result.Analysis, override.Analysis)
	if override.Format.TabWidth != 0 {
		result.Format.TabWidth = override.Format.TabWidth
	}
	if override.Format.IndentUnit != "" {
		result.Format.IndentUnit = override.Format.IndentUnit
	}
	if override.Backups.Enabled != nil {
		result.Backups.Enabled = override.Backups.Enabled
	}

	// CLI-level scalars.
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.RuleFormat != "" {
		result.RuleFormat = override.RuleFormat
	}
	if override.SummaryOrder != "" {
		result.SummaryOrder = override.SummaryOrder
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.MaxPasses != 0 {
		result.MaxPasses = override.MaxPasses
	}

	// Booleans can only be switched on by a later layer.
	if override.Fix {
		result.Fix = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}
	if override.Strict {
		result.Strict = true
	}

	result.Rules = mergeRules(base.Rules, override.Rules)

	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}
	if override.EnableRules != nil {
		result.EnableRules = override.EnableRules
	}
	if override.DisableRules != nil {
		result.DisableRules = override.DisableRules
	}
	if override.FixRules != nil {
		result.FixRules = override.FixRules
	}

	return &result
}

func mergeAnalysis(dst *config.AnalysisConfig, override config.AnalysisConfig) {
	if override.AssertionsEnabled != nil {
		dst.AssertionsEnabled = override.AssertionsEnabled
	}
	if override.NullAnalysis != nil {
		dst.NullAnalysis = override.NullAnalysis
	}
	if override.UnusedVariableSeverity != "" {
		dst.UnusedVariableSeverity = override.UnusedVariableSeverity
	}
}

// mergeRules performs deep merge of rule configurations.
// Both maps are iterated, with override's values taking precedence.
func mergeRules(base, override map[string]config.RuleConfig) map[string]config.RuleConfig {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]config.RuleConfig, len(base)+len(override))
	for key, val := range base {
		result[key] = val.Clone()
	}
	for key, val := range override {
		if existing, ok := result[key]; ok {
			result[key] = mergeRuleConfig(existing, val)
		} else {
			result[key] = val.Clone()
		}
	}
	return result
}

// mergeRuleConfig merges individual rule configurations.
// override's values take precedence over base's values.
func mergeRuleConfig(base, override config.RuleConfig) config.RuleConfig {
	result := base.Clone()

	if override.Enabled != nil {
		result.Enabled = override.Enabled
	}
	if override.Severity != nil {
		result.Severity = override.Severity
	}
	if override.AutoFix != nil {
		result.AutoFix = override.AutoFix
	}

	if override.Options != nil {
		if result.Options == nil {
			result.Options = make(map[string]any, len(override.Options))
		}
		for key, val := range override.Options {
			result.Options[key] = val
		}
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
