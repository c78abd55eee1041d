package rules

import "github.com/yaklabco/flowfix/pkg/config"

// Pack describes a named group of rule defaults for a particular use case.
// Packs are configuration fragments that can be used as starting points
// for .flowfix.yml files.
type Pack struct {
	// Name is the short identifier for the pack (e.g., "core", "strict").
	Name string

	// Description explains the purpose and characteristics of the pack.
	Description string

	// Rules contains rule configurations keyed by rule ID.
	Rules map[string]config.RuleConfig
}

// CorePack returns the core pack: compile-blocking flow errors as errors,
// cleanup findings as warnings.
func CorePack() Pack {
	return Pack{
		Name:        "core",
		Description: "Flow errors the compiler would reject, plus cleanup warnings",
		Rules: map[string]config.RuleConfig{
			"FLOW001": enabled("error"),   // unreachable-code
			"FLOW002": enabled("warning"), // dead-code
			"FLOW003": enabled("error"),   // uninitialized-variable
			"FLOW004": enabled("error"),   // missing-return
			"FLOW005": enabled("error"),   // final-reassigned
			"FLOW008": enabled("warning"), // unused-variable
			"FLOW009": enabled("error"),   // unhandled-exception
			"FLOW010": enabled("error"),   // misplaced-jump
			"FLOW011": enabled("error"),   // type-mismatch
			"FLOW012": enabled("error"),   // syntax-error
		},
	}
}

// StrictPack returns the strict pack with every rule, null analysis
// included, reported as an error.
func StrictPack() Pack {
	return Pack{
		Name:        "strict",
		Description: "Strict pack: every rule as an error, null analysis included",
		Rules: map[string]config.RuleConfig{
			// Reachability.
			"FLOW001": enabled("error"), // unreachable-code
			"FLOW002": enabled("error"), // dead-code
			"FLOW004": enabled("error"), // missing-return
			"FLOW010": enabled("error"), // misplaced-jump

			// Assignment.
			"FLOW003": enabled("error"), // uninitialized-variable
			"FLOW005": enabled("error"), // final-reassigned
			"FLOW008": enabled("error"), // unused-variable
			"FLOW011": enabled("error"), // type-mismatch

			// Null analysis.
			"FLOW006": enabled("error"), // null-dereference
			"FLOW007": enabled("error"), // potential-null-dereference

			// Exceptions and syntax.
			"FLOW009": enabled("error"), // unhandled-exception
			"FLOW012": enabled("error"), // syntax-error
		},
	}
}

// RelaxedPack returns a relaxed pack that keeps the compile-blocking rules
// and turns the heuristic ones off, suitable for legacy codebases.
func RelaxedPack() Pack {
	return Pack{
		Name:        "relaxed",
		Description: "Relaxed pack: compile-blocking rules only, heuristics off",
		Rules: map[string]config.RuleConfig{
			"FLOW001": enabled("error"), // unreachable-code
			"FLOW003": enabled("error"), // uninitialized-variable
			"FLOW004": enabled("error"), // missing-return
			"FLOW012": enabled("error"), // syntax-error
			"FLOW002": disabled(),       // dead-code
			"FLOW007": disabled(),       // potential-null-dereference
			"FLOW008": disabled(),       // unused-variable
		},
	}
}

// CleanupPack returns rules whose corrections only remove code, for
// unattended --fix runs.
func CleanupPack() Pack {
	return Pack{
		Name:        "cleanup",
		Description: "Cleanup pack: removal-only fixes for unreachable, dead and unused code",
		Rules: map[string]config.RuleConfig{
			"FLOW001": fixing("warning"), // unreachable-code
			"FLOW002": fixing("warning"), // dead-code
			"FLOW008": fixing("info"),    // unused-variable
			"FLOW010": fixing("warning"), // misplaced-jump
		},
	}
}

// Packs returns all built-in rule packs.
func Packs() []Pack {
	return []Pack{
		CorePack(),
		StrictPack(),
		RelaxedPack(),
		CleanupPack(),
	}
}

// PackByName returns a pack by name, or nil if not found.
func PackByName(name string) *Pack {
	for _, p := range Packs() {
		if p.Name == name {
			return &p
		}
	}
	return nil
}

// PackNames returns the names of all available packs.
func PackNames() []string {
	packs := Packs()
	names := make([]string, len(packs))
	for i, p := range packs {
		names[i] = p.Name
	}
	return names
}

// enabled creates a RuleConfig with the rule enabled and the given severity.
func enabled(sev string) config.RuleConfig {
	return config.RuleConfig{
		Enabled:  config.Bool(true),
		Severity: &sev,
	}
}

func disabled() config.RuleConfig {
	return config.RuleConfig{Enabled: config.Bool(false)}
}

func fixing(sev string) config.RuleConfig {
	rc := enabled(sev)
	rc.AutoFix = config.Bool(true)
	return rc
}
