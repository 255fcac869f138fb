package dedup

import (
	"cssdedup/css"
)

// IsEmpty reports whether rule has no children other than comments.
func IsEmpty(rule *css.Rule) bool {
	for _, n := range rule.Children {
		if _, ok := n.(*css.Comment); !ok {
			return false
		}
	}
	return true
}

// Prune reports whether rule has to be detached from its parent: it is
// empty and empty rules are not preserved.
func Prune(rule *css.Rule, preserveEmpty bool) bool {
	return !preserveEmpty && IsEmpty(rule)
}
