// Package debug renders internal structures into readable text for debug
// reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const defaultIndent = "  "

// TreeWriter accumulates indented lines, one per tree node or attribute.
type TreeWriter struct {
	b      strings.Builder
	indent string
	limit  int // maximum runes of text value kept, 0 - no limit
	lines  int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{indent: defaultIndent}
}

// WithIndent replaces per level indentation.
func (tw *TreeWriter) WithIndent(indent string) *TreeWriter {
	tw.indent = indent
	return tw
}

// WithLimit makes TextBlock elide values longer than n runes.
func (tw *TreeWriter) WithLimit(n int) *TreeWriter {
	tw.limit = max(n, 0)
	return tw
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

// Lines returns number of lines written so far.
func (tw *TreeWriter) Lines() int {
	return tw.lines
}

func (tw *TreeWriter) prefix(depth int) {
	for range depth {
		tw.b.WriteString(tw.indent)
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.prefix(depth)
	fmt.Fprintf(&tw.b, format, args...)
	tw.b.WriteByte('\n')
	tw.lines++
}

// TextBlock writes labeled quoted value, empty value is left bare.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.prefix(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	tw.b.WriteString(encodeText(value, tw.limit))
	tw.b.WriteByte('\n')
	tw.lines++
}

func encodeText(raw string, limit int) string {
	if raw == "" {
		return raw
	}
	if limit == 0 {
		return strconv.Quote(raw)
	}
	n := utf8.RuneCountInString(raw)
	if n <= limit {
		return strconv.Quote(raw)
	}
	cut := raw
	for i := range raw {
		if limit == 0 {
			cut = raw[:i]
			break
		}
		limit--
	}
	return fmt.Sprintf("%s... (%d runes)", strconv.Quote(cut), n)
}
