package lint

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Registry indexes rules by ID and name. Aliases point at IDs and are only
// consulted by Resolve.
type Registry struct {
	mu      sync.RWMutex
	rules   map[string]Rule
	names   map[string]string
	aliases map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:   make(map[string]Rule),
		names:   make(map[string]string),
		aliases: make(map[string]string),
	}
}

// Register adds rule, replacing any rule with the same ID.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.rules[rule.ID()]; ok {
		delete(r.names, old.Name())
	}
	r.rules[rule.ID()] = rule
	r.names[rule.Name()] = rule.ID()
}

// RegisterAlias makes alias resolve to ruleID, e.g. "unused" to FLOW008.
func (r *Registry) RegisterAlias(alias, ruleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[strings.ToLower(alias)] = ruleID
}

// Get looks key up as an ID, then as a name.
func (r *Registry) Get(key string) (Rule, bool) {
	if rule, ok := r.GetByID(key); ok {
		return rule, true
	}
	return r.GetByName(key)
}

// GetByID looks up a rule by ID.
func (r *Registry) GetByID(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok
}

// GetByName looks up a rule by name.
func (r *Registry) GetByName(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[r.names[name]]
	return rule, ok
}

// Resolve finds the rule a configuration key refers to. The key may be an
// ID, a name or an alias, in any case.
func (r *Registry) Resolve(key string) (string, Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(key)
	for _, id := range []string{
		key, strings.ToUpper(key),
		r.names[key], r.names[lower],
		r.aliases[lower],
	} {
		if rule, ok := r.rules[id]; ok {
			return id, rule, true
		}
	}
	return "", nil, false
}

// Rules returns every rule ordered by ID.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rules := make([]Rule, 0, len(r.rules))
	for _, id := range slices.Sorted(maps.Keys(r.rules)) {
		rules = append(rules, r.rules[id])
	}
	return rules
}

// IDs returns every rule ID in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.rules))
}

// DefaultRegistry holds the built-in rules; package rules fills it in init.
//
//nolint:gochecknoglobals // rules register themselves at init
var DefaultRegistry = NewRegistry()
