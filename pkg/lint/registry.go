package lint

import (
	"fmt"
	"sort"
	"sync"
)

// globalRegistry is the single global registry for all rules.
var globalRegistry = &Registry{
	rules: make(map[string]Rule),
}

// Registry stores registered rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule // keyed by ID
}

// Register adds a rule definition to the global registry.
// Call this from init() functions in rule packages.
func Register(def RuleDef) {
	rule := WrapRuleDef(def)
	if rule == nil {
		panic(fmt.Sprintf("lint: rule %s has no check function", def.ID))
	}
	RegisterRule(rule)
}

// RegisterRule adds a Rule implementation to the global registry.
func RegisterRule(rule Rule) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID()] = rule
}

// AllRules returns all registered rules sorted by ID.
func AllRules() []Rule {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]Rule, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID() < rules[j].ID() })
	return rules
}

// GetRuleByID returns a rule by its ID.
func GetRuleByID(id string) (Rule, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// GetGraphRules returns all registered graph rules sorted by ID.
func GetGraphRules() []GraphRule {
	var out []GraphRule
	for _, r := range AllRules() {
		if gr, ok := r.(GraphRule); ok {
			out = append(out, gr)
		}
	}
	return out
}

// GetRulesByGroup returns all rules in a specific group.
func GetRulesByGroup(group string) []Rule {
	var out []Rule
	for _, r := range AllRules() {
		if r.Group() == group {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]Rule)
}
