package css

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// Node is a single item of a stylesheet tree: *Rule, *AtRule, *Declaration
// or *Comment.
type Node interface {
	node()
}

// Comment is kept verbatim, including delimiters.
type Comment struct {
	Text string
}

// Declaration is a single "property: value [!important]" entry. Property
// keeps letter case of the source, value is trimmed source text with
// whitespace runs outside of strings collapsed, it is not interpreted.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule represents a qualified rule: selector text as written (whitespace
// runs collapsed) and its ordered children (declarations, comments and
// nested rules).
type Rule struct {
	Selector string
	Children []Node
}

// AtRule represents any @-rule. Statement at-rules (@import, @charset) have
// no block. Block at-rules are conditional groups (@media, @supports,
// @keyframes, ...) holding rules or, like @font-face and @page, holding
// declarations directly.
type AtRule struct {
	Name     string // including "@", e.g. "@media"
	Prelude  string // e.g. "screen and (min-width: 100px)"
	Block    bool
	Children []Node
}

func (*Comment) node()     {}
func (*Declaration) node() {}
func (*Rule) node()        {}
func (*AtRule) node()      {}

// Declarations returns declarations of the rule in source order.
func (r *Rule) Declarations() []*Declaration {
	var decls []*Declaration
	for _, n := range r.Children {
		if d, ok := n.(*Declaration); ok {
			decls = append(decls, d)
		}
	}
	return decls
}

// Stylesheet is an ordered sequence of top-level nodes.
type Stylesheet struct {
	Nodes []Node
}

// Rules iterates over all rules of the stylesheet depth first in document
// order, including rules inside at-rule blocks and nested rules.
func (s *Stylesheet) Rules() iter.Seq[*Rule] {
	return func(yield func(*Rule) bool) {
		walkRules(s.Nodes, yield)
	}
}

func walkRules(nodes []Node, yield func(*Rule) bool) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Rule:
			if !yield(v) {
				return false
			}
			if !walkRules(v.Children, yield) {
				return false
			}
		case *AtRule:
			if !walkRules(v.Children, yield) {
				return false
			}
		}
	}
	return true
}

// RulesBySelector returns all rules (at any depth) with exactly matching selector text.
func (s *Stylesheet) RulesBySelector(selector string) []*Rule {
	var matches []*Rule
	for r := range s.Rules() {
		if r.Selector == selector {
			matches = append(matches, r)
		}
	}
	return matches
}

// countingWriter keeps running total and first error so printing code does
// not have to check every write.
type countingWriter struct {
	w     io.Writer
	total int64
	err   error
}

func (cw *countingWriter) printf(format string, args ...any) {
	if cw.err != nil {
		return
	}
	n, err := fmt.Fprintf(cw.w, format, args...)
	cw.total += int64(n)
	cw.err = err
}

func (cw *countingWriter) indent(depth int) {
	cw.printf("%s", strings.Repeat("  ", depth))
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	for i, n := range s.Nodes {
		writeNode(cw, n, 0)
		// blank line between top level items (except after last)
		if i < len(s.Nodes)-1 {
			cw.printf("\n")
		}
	}
	return cw.total, cw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeNode(cw *countingWriter, n Node, depth int) {
	cw.indent(depth)
	switch v := n.(type) {
	case *Comment:
		cw.printf("%s\n", v.Text)
	case *Declaration:
		if v.Important {
			cw.printf("%s: %s !important;\n", v.Property, v.Value)
		} else {
			cw.printf("%s: %s;\n", v.Property, v.Value)
		}
	case *Rule:
		cw.printf("%s {\n", v.Selector)
		writeChildren(cw, v.Children, depth)
	case *AtRule:
		head := v.Name
		if v.Prelude != "" {
			head += " " + v.Prelude
		}
		if !v.Block {
			cw.printf("%s;\n", head)
			return
		}
		cw.printf("%s {\n", head)
		writeChildren(cw, v.Children, depth)
	}
}

func writeChildren(cw *countingWriter, children []Node, depth int) {
	for _, c := range children {
		writeNode(cw, c, depth+1)
	}
	cw.indent(depth)
	cw.printf("}\n")
}
