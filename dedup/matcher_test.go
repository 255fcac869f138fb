package dedup_test

import (
	"regexp"
	"strings"
	"testing"

	"cssdedup/dedup"
)

func TestMatcher(t *testing.T) {
	ecma, err := dedup.CompilePattern(`^\.x(?!-)`)
	if err != nil {
		t.Fatalf("CompilePattern() error = %v", err)
	}

	tests := []struct {
		name     string
		matcher  dedup.Matcher
		selector string
		want     bool
	}{
		{"zero value", dedup.Matcher{}, ".anything", true},
		{"all", dedup.MatchAll(), "", true},
		{"substring hit", dedup.MatchSubstring(".x"), "div .x:hover", true},
		{"substring is not anchored", dedup.MatchSubstring("a"), ".banner", true},
		{"substring miss", dedup.MatchSubstring(".x"), ".y", false},
		{"empty substring", dedup.MatchSubstring(""), ".y", true},
		{"regexp hit", dedup.MatchPattern(regexp.MustCompile(`^\.x$`)), ".x", true},
		{"regexp miss", dedup.MatchPattern(regexp.MustCompile(`^\.x$`)), ".xx", false},
		{"nil regexp", dedup.MatchPattern((*regexp.Regexp)(nil)), ".y", true},
		{"nil pattern", dedup.MatchPattern(nil), ".y", true},
		{"ecma lookahead hit", dedup.MatchPattern(ecma), ".x .y", true},
		{"ecma lookahead miss", dedup.MatchPattern(ecma), ".x-large", false},
		{"func hit", dedup.MatchFunc(func(s string) bool { return strings.HasSuffix(s, "p") }), "div p", true},
		{"func miss", dedup.MatchFunc(func(s string) bool { return false }), "div p", false},
		{"nil func", dedup.MatchFunc(nil), "div p", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dedup.Matches(tt.matcher, tt.selector); got != tt.want {
				t.Errorf("Matches(%s, %q) = %t, want %t", tt.matcher, tt.selector, got, tt.want)
			}
		})
	}
}

func TestMatcherFrom(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		selector string
		want     bool
		all      bool
	}{
		{"nil", nil, ".y", true, true},
		{"string", ".x", ".y", false, false},
		{"empty string", "", ".y", true, true},
		{"regexp", regexp.MustCompile(`y$`), ".y", true, false},
		{"predicate", func(s string) bool { return s == ".z" }, ".y", false, false},
		{"matcher", dedup.MatchSubstring(".y"), ".y", true, false},
		{"unsupported int", 42, ".y", true, true},
		{"unsupported slice", []string{".x"}, ".y", true, true},
		{"unsupported bool", false, ".y", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := dedup.MatcherFrom(tt.value)
			if got := m.Matches(tt.selector); got != tt.want {
				t.Errorf("Matches(%q) = %t, want %t", tt.selector, got, tt.want)
			}
			if m.IsAll() != tt.all {
				t.Errorf("IsAll() = %t, want %t", m.IsAll(), tt.all)
			}
		})
	}
}

func TestCompilePattern_Invalid(t *testing.T) {
	if _, err := dedup.CompilePattern(`(`); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestMatcher_String(t *testing.T) {
	tests := []struct {
		matcher dedup.Matcher
		want    string
	}{
		{dedup.MatchAll(), "all"},
		{dedup.MatchSubstring(".x"), `substring(".x")`},
		{dedup.MatchPattern(regexp.MustCompile(`^a`)), `pattern("^a")`},
		{dedup.MatchFunc(func(string) bool { return true }), "func"},
	}
	for _, tt := range tests {
		if got := tt.matcher.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
