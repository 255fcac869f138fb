package css

import (
	"cssdedup/utils/debug"
)

// long comments and data URIs are elided in dumps
const dumpTextLimit = 160

// Dump renders the tree structure of the stylesheet for debugging.
func (s *Stylesheet) Dump() string {
	tw := debug.NewTreeWriter().WithLimit(dumpTextLimit)
	tw.Line(0, "Stylesheet nodes=%d", len(s.Nodes))
	for _, n := range s.Nodes {
		dumpNode(tw, n, 1)
	}
	return tw.String()
}

func dumpNode(tw *debug.TreeWriter, n Node, depth int) {
	switch v := n.(type) {
	case *Comment:
		tw.TextBlock(depth, "Comment", v.Text)
	case *Declaration:
		if v.Important {
			tw.Line(depth, "Declaration %s !important", v.Property)
		} else {
			tw.Line(depth, "Declaration %s", v.Property)
		}
		tw.TextBlock(depth+1, "value", v.Value)
	case *Rule:
		tw.Line(depth, "Rule children=%d", len(v.Children))
		tw.TextBlock(depth+1, "selector", v.Selector)
		for _, c := range v.Children {
			dumpNode(tw, c, depth+1)
		}
	case *AtRule:
		tw.Line(depth, "AtRule %s block=%t children=%d", v.Name, v.Block, len(v.Children))
		if v.Prelude != "" {
			tw.TextBlock(depth+1, "prelude", v.Prelude)
		}
		for _, c := range v.Children {
			dumpNode(tw, c, depth+1)
		}
	}
}
