package dedup

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cssdedup/css"
)

// ErrNoTree is returned when there is no stylesheet to walk.
var ErrNoTree = errors.New("no stylesheet to process")

// Options controls the transform.
type Options struct {
	// Selector restricts processing to matching rules, zero value matches all.
	Selector Matcher
	// PreserveEmpty keeps rules left without declarations.
	PreserveEmpty bool
}

// Stats describes what a single run (or several aggregated runs) did.
type Stats struct {
	Rules         int // rules processed
	Filtered      int // rules skipped by selector
	Pruned        int // empty rules removed
	Removed       int // declarations removed
	VendorRemoved int // vendor prefixed declarations among removed
	Faults        int // rules left unchanged after internal failure
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rules += other.Rules
	s.Filtered += other.Filtered
	s.Pruned += other.Pruned
	s.Removed += other.Removed
	s.VendorRemoved += other.VendorRemoved
	s.Faults += other.Faults
}

// Changed reports whether tree was modified.
func (s Stats) Changed() bool {
	return s.Removed > 0 || s.Pruned > 0
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("rules", s.Rules)
	enc.AddInt("filtered", s.Filtered)
	enc.AddInt("pruned", s.Pruned)
	enc.AddInt("removed", s.Removed)
	enc.AddInt("vendor_removed", s.VendorRemoved)
	if s.Faults > 0 {
		enc.AddInt("faults", s.Faults)
	}
	return nil
}

// Transformer walks stylesheet trees removing redundant declarations.
type Transformer struct {
	opts Options
	log  *zap.Logger
}

// New creates transformer with given options.
func New(opts Options, log *zap.Logger) *Transformer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transformer{opts: opts, log: log.Named("dedup")}
}

// Run processes all rules of the sheet in document order, including rules
// inside at-rule blocks, mutating the tree in place. At-rules themselves are
// never filtered by selector. Failure while processing a single rule leaves
// that rule unchanged and does not stop processing of others.
func (t *Transformer) Run(sheet *css.Stylesheet) (Stats, error) {
	var stats Stats
	if sheet == nil {
		return stats, ErrNoTree
	}
	sheet.Nodes = t.walk(sheet.Nodes, &stats)

	t.log.Debug("Stylesheet processed", zap.Object("stats", stats), zap.Stringer("selector", t.opts.Selector))
	return stats, nil
}

// Run processes sheet with given options without logging.
func Run(sheet *css.Stylesheet, opts Options) (Stats, error) {
	return New(opts, nil).Run(sheet)
}

// walk processes nodes and returns them without pruned rules.
func (t *Transformer) walk(nodes []css.Node, stats *Stats) []css.Node {
	kept := nodes[:0]
	for _, n := range nodes {
		switch v := n.(type) {
		case *css.AtRule:
			if v != nil && v.Block {
				v.Children = t.walk(v.Children, stats)
			}
		case *css.Rule:
			if v != nil && t.processRule(v, stats) {
				stats.Pruned++
				t.log.Debug("Removed empty rule", zap.String("selector", v.Selector))
				continue
			}
		}
		kept = append(kept, n)
	}
	clear(nodes[len(kept):])
	return kept
}

// processRule returns true when rule has to be removed from its parent.
func (t *Transformer) processRule(rule *css.Rule, stats *Stats) (prune bool) {
	// selector predicates are caller supplied, so matching is guarded too
	defer func() {
		if r := recover(); r != nil {
			stats.Faults++
			prune = false
			t.log.Error("Unable to process rule, leaving it as is",
				zap.String("selector", rule.Selector), zap.Error(fmt.Errorf("%v", r)))
		}
	}()

	if !t.opts.Selector.Matches(rule.Selector) {
		stats.Filtered++
		return false
	}

	stats.Rules++
	for _, d := range resolve(rule) {
		stats.Removed++
		if IsVendorPrefixed(d.Property) {
			stats.VendorRemoved++
		}
		t.log.Debug("Removed declaration",
			zap.String("selector", rule.Selector), zap.String("property", d.Property),
			zap.String("value", d.Value), zap.Bool("important", d.Important))
	}

	// nested rules are independent of their parent
	rule.Children = t.walk(rule.Children, stats)

	return Prune(rule, t.opts.PreserveEmpty)
}
