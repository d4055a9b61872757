package dispatch

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// TimeoutRule binds a tool-name pattern to a hard wall-clock bound. Patterns
// use glob syntax ("click", "navigate_*"). Rules are evaluated in order and
// the first match wins.
type TimeoutRule struct {
	Pattern string        `yaml:"pattern"`
	Timeout time.Duration `yaml:"timeout"`
}

// TimeoutPolicy decides which tools run under a hard deadline and which run
// undecorated. Only interaction and navigation style tools are bounded; a
// hanging click must not wedge the whole session, while a slow extraction is
// allowed to take its time.
type TimeoutPolicy struct {
	rules []compiledRule
}

type compiledRule struct {
	pattern string
	matcher glob.Glob
	timeout time.Duration
}

// NewTimeoutPolicy compiles the rules. Invalid glob patterns fail loudly at
// construction rather than silently never matching.
func NewTimeoutPolicy(rules []TimeoutRule) (*TimeoutPolicy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		m, err := glob.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout pattern %q: %w", r.Pattern, err)
		}
		compiled = append(compiled, compiledRule{pattern: r.Pattern, matcher: m, timeout: r.Timeout})
	}
	return &TimeoutPolicy{rules: compiled}, nil
}

// DefaultTimeoutRules returns the stock per-tool bounds, carried over from
// production tuning of the interaction tools that hang most often.
func DefaultTimeoutRules() []TimeoutRule {
	return []TimeoutRule{
		{Pattern: "click", Timeout: 5 * time.Second},
		{Pattern: "fill", Timeout: 8 * time.Second},
		{Pattern: "fill_form", Timeout: 12 * time.Second},
		{Pattern: "press_key", Timeout: 8 * time.Second},
		{Pattern: "navigate_*", Timeout: 15 * time.Second},
	}
}

// Lookup returns the bound for a tool name, or false when the tool runs
// undecorated.
func (p *TimeoutPolicy) Lookup(name string) (time.Duration, bool) {
	if p == nil {
		return 0, false
	}
	for _, r := range p.rules {
		if r.matcher.Match(name) {
			return r.timeout, true
		}
	}
	return 0, false
}
