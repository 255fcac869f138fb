package dedup

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Pattern is anything able to test selector text. *regexp.Regexp satisfies it.
type Pattern interface {
	MatchString(s string) bool
}

type matcherKind int

const (
	matchAll matcherKind = iota
	matchSubstring
	matchPattern
	matchFunc
)

// Matcher decides which rules are eligible for processing. Zero value
// matches every rule.
type Matcher struct {
	kind    matcherKind
	literal string
	pattern Pattern
	fn      func(selector string) bool
}

// MatchAll returns matcher accepting every rule.
func MatchAll() Matcher {
	return Matcher{}
}

// MatchSubstring accepts rules whose selector text contains s. Selector is
// not interpreted, "a" matches ".banner" as well.
func MatchSubstring(s string) Matcher {
	if s == "" {
		return MatchAll()
	}
	return Matcher{kind: matchSubstring, literal: s}
}

// MatchPattern accepts rules whose selector text matches p.
func MatchPattern(p Pattern) Matcher {
	if p == nil {
		return MatchAll()
	}
	if re, ok := p.(*regexp.Regexp); ok && re == nil {
		return MatchAll()
	}
	return Matcher{kind: matchPattern, pattern: p}
}

// MatchFunc accepts rules for which fn returns true.
func MatchFunc(fn func(selector string) bool) Matcher {
	if fn == nil {
		return MatchAll()
	}
	return Matcher{kind: matchFunc, fn: fn}
}

// MatcherFrom builds matcher from dynamically typed value: string,
// *regexp.Regexp, Pattern, func(string) bool or Matcher. Any other value,
// nil included, results in matcher accepting every rule.
func MatcherFrom(v any) Matcher {
	switch m := v.(type) {
	case Matcher:
		return m
	case string:
		return MatchSubstring(m)
	case *regexp.Regexp:
		return MatchPattern(m)
	case Pattern:
		return MatchPattern(m)
	case func(string) bool:
		return MatchFunc(m)
	default:
		return MatchAll()
	}
}

// Matches reports whether rule with given selector text is eligible.
func (m Matcher) Matches(selector string) bool {
	switch m.kind {
	case matchSubstring:
		return strings.Contains(selector, m.literal)
	case matchPattern:
		return m.pattern.MatchString(selector)
	case matchFunc:
		return m.fn(selector)
	default:
		return true
	}
}

// IsAll reports whether matcher accepts every rule.
func (m Matcher) IsAll() bool {
	return m.kind == matchAll
}

// String describes matcher for logging.
func (m Matcher) String() string {
	switch m.kind {
	case matchSubstring:
		return fmt.Sprintf("substring(%q)", m.literal)
	case matchPattern:
		if s, ok := m.pattern.(fmt.Stringer); ok {
			return fmt.Sprintf("pattern(%q)", s.String())
		}
		return "pattern"
	case matchFunc:
		return "func"
	default:
		return "all"
	}
}

// Matches reports whether selector satisfies m.
func Matches(m Matcher, selector string) bool {
	return m.Matches(selector)
}

// patternTimeout bounds evaluation of a single backtracking pattern.
const patternTimeout = 100 * time.Millisecond

// ecmaPattern adapts regexp2 to Pattern. Evaluation errors (timeouts) are
// treated as no match.
type ecmaPattern struct {
	re *regexp2.Regexp
}

func (p ecmaPattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

func (p ecmaPattern) String() string {
	return p.re.String()
}

// CompilePattern compiles regular expression using ECMAScript syntax and
// semantics (lookarounds, backreferences), which is what selector patterns
// written for other CSS tooling use.
func CompilePattern(expr string) (Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("unable to compile selector pattern %q: %w", expr, err)
	}
	re.MatchTimeout = patternTimeout
	return ecmaPattern{re: re}, nil
}
