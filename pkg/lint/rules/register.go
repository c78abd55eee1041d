package rules

import (
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
)

// RegisterAll registers all built-in rules with the given registry.
func RegisterAll(registry *lint.Registry) {
	// Reachability
	registry.Register(NewUnreachableCodeRule()) // FLOW001
	registry.Register(NewDeadCodeRule())        // FLOW002
	registry.Register(NewMissingReturnRule())   // FLOW004
	registry.Register(NewMisplacedJumpRule())   // FLOW010

	// Assignment
	registry.Register(NewUninitializedVariableRule()) // FLOW003
	registry.Register(NewFinalReassignedRule())       // FLOW005
	registry.Register(NewUnusedVariableRule())        // FLOW008
	registry.Register(NewTypeMismatchRule())          // FLOW011

	// Null analysis
	registry.Register(NewNullDereferenceRule())          // FLOW006
	registry.Register(NewPotentialNullDereferenceRule()) // FLOW007

	// Exceptions
	registry.Register(NewUnhandledExceptionRule()) // FLOW009

	// Syntax
	registry.Register(NewSyntaxErrorRule()) // FLOW012
}

// RegisterShortAliases registers the short names accepted in --enable,
// --disable and the rules table next to IDs and canonical names.
func RegisterShortAliases(registry *lint.Registry) {
	registry.RegisterAlias("unreachable", "FLOW001")
	registry.RegisterAlias("dead", "FLOW002")
	registry.RegisterAlias("uninitialized", "FLOW003")
	registry.RegisterAlias("definite-assignment", "FLOW003")
	registry.RegisterAlias("final", "FLOW005")
	registry.RegisterAlias("null", "FLOW006")
	registry.RegisterAlias("maybe-null", "FLOW007")
	registry.RegisterAlias("unused", "FLOW008")
	registry.RegisterAlias("unhandled", "FLOW009")
	registry.RegisterAlias("syntax", "FLOW012")
}

// RuleInfos returns template metadata for the rules of registry.
func RuleInfos(registry *lint.Registry) []config.RuleInfo {
	rules := registry.Rules()
	out := make([]config.RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, config.RuleInfo{
			ID:          r.ID(),
			Name:        r.Name(),
			Description: r.Description(),
			Enabled:     r.DefaultEnabled(),
			Severity:    r.DefaultSeverity(),
			Tags:        r.Tags(),
			CanFix:      r.CanFix(),
		})
	}
	return out
}

// init registers all built-in rules with the default registry.
//
//nolint:gochecknoinits // Init is intentional for automatic rule registration
func init() {
	RegisterAll(lint.DefaultRegistry)
	RegisterShortAliases(lint.DefaultRegistry)
	config.DefaultRuleInfoProvider = func() []config.RuleInfo {
		return RuleInfos(lint.DefaultRegistry)
	}
}
