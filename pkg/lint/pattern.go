package lint

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// Pattern selects modules by dotted glob:
//
//	MyApp.Repo     exactly MyApp.Repo
//	MyApp.Web.*    direct children of MyApp.Web
//	MyApp.Web.**   MyApp.Web and everything below it
//	Ecto.*Repo     single-segment wildcards work as in shell globs
//
// Segments map to path components, so "*" never crosses a dot.
type Pattern struct {
	raw  string
	glob string
}

// ParsePattern validates and compiles a module pattern.
func ParsePattern(raw string) (Pattern, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Pattern{}, fmt.Errorf("empty module pattern")
	}
	glob := strings.ReplaceAll(trimmed, ".", "/")
	if !doublestar.ValidatePattern(glob) {
		return Pattern{}, fmt.Errorf("invalid module pattern %q", raw)
	}
	return Pattern{raw: trimmed, glob: glob}, nil
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether id is selected by the pattern.
func (p Pattern) Match(id modgraph.ModuleID) bool {
	if id.IsZero() {
		return false
	}
	ok, _ := doublestar.Match(p.glob, strings.ReplaceAll(id.String(), ".", "/"))
	return ok
}

// PatternSet is a union of patterns.
type PatternSet []Pattern

// ParsePatterns compiles every pattern, failing on the first invalid one.
func ParsePatterns(raw []string) (PatternSet, error) {
	set := make(PatternSet, 0, len(raw))
	for _, r := range raw {
		p, err := ParsePattern(r)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// Match reports whether any pattern selects id.
func (s PatternSet) Match(id modgraph.ModuleID) bool {
	for _, p := range s {
		if p.Match(id) {
			return true
		}
	}
	return false
}
