package dedup

import (
	"slices"
	"strings"

	"cssdedup/css"
)

// candidate is the current winner for a property within one rule.
type candidate struct {
	important bool
	index     int // position in rule children
}

// Key returns name declarations are grouped by. Property names are ASCII
// case-insensitive, custom properties are not.
func Key(property string) string {
	if strings.HasPrefix(property, "--") {
		return property
	}
	return strings.ToLower(property)
}

// Resolve removes redundant declarations from the rule, keeping for every
// property key the last !important declaration if there is one, otherwise
// the last declaration. Survivors keep their relative order. Declarations
// with empty property or value are left alone.
func Resolve(rule *css.Rule) {
	resolve(rule)
}

// Duplicates returns declarations Resolve would remove from the rule in
// source order. The rule is not modified.
func Duplicates(rule *css.Rule) []*css.Declaration {
	if rule == nil {
		return nil
	}
	return resolve(&css.Rule{Selector: rule.Selector, Children: slices.Clone(rule.Children)})
}

// resolve returns removed declarations in source order.
func resolve(rule *css.Rule) []*css.Declaration {
	if rule == nil || len(rule.Children) == 0 {
		return nil
	}

	var (
		seen    = make(map[string]candidate)
		removed []bool
	)
	drop := func(i int) {
		if removed == nil {
			removed = make([]bool, len(rule.Children))
		}
		removed[i] = true
	}

	for i, n := range rule.Children {
		d, ok := n.(*css.Declaration)
		if !ok || d == nil || d.Property == "" || d.Value == "" {
			continue
		}

		key := Key(d.Property)
		prev, exists := seen[key]
		switch {
		case !exists:
		case prev.important && !d.Important:
			// cannot win against important one, wherever it is
			drop(i)
			continue
		default:
			drop(prev.index)
		}
		seen[key] = candidate{important: d.Important, index: i}
	}

	if removed == nil {
		return nil
	}

	var dropped []*css.Declaration
	kept := rule.Children[:0]
	for i, n := range rule.Children {
		if removed[i] {
			dropped = append(dropped, n.(*css.Declaration))
			continue
		}
		kept = append(kept, n)
	}
	// release references held by the tail of the shared backing array
	clear(rule.Children[len(kept):])
	rule.Children = kept
	return dropped
}
