// Package dumputil provides shared output helpers for cssdump debug tool.
// It operates on parsed *css.Stylesheet and produces tree dumps and reports
// of redundant declarations.
package dumputil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"cssdedup/css"
	"cssdedup/dedup"
	"cssdedup/utils/debug"
)

// DumpTree writes parsed tree to <stem>-tree.txt.
func DumpTree(sheet *css.Stylesheet, inPath, outDir string, overwrite bool) error {
	return WriteOutput(inPath, outDir, "-tree.txt", []byte(sheet.Dump()), overwrite)
}

// DumpDuplicates writes report of declarations which would be removed from
// rules selected by m to <stem>-duplicates.txt.
func DumpDuplicates(sheet *css.Stylesheet, m dedup.Matcher, inPath, outDir string, overwrite bool) error {
	return WriteOutput(inPath, outDir, "-duplicates.txt", []byte(DuplicatesReport(sheet, m)), overwrite)
}

// DuplicatesReport lists every selected rule with redundant declarations.
func DuplicatesReport(sheet *css.Stylesheet, m dedup.Matcher) string {
	tw := debug.NewTreeWriter()

	var rules, total int
	for rule := range sheet.Rules() {
		if !m.Matches(rule.Selector) {
			continue
		}
		dups := dedup.Duplicates(rule)
		if len(dups) == 0 {
			continue
		}
		rules++
		total += len(dups)

		tw.Line(0, "Rule %q: %d of %d declarations redundant", rule.Selector, len(dups), len(rule.Declarations()))
		for _, d := range dups {
			mark := ""
			if d.Important {
				mark = " !important"
			}
			if dedup.IsVendorPrefixed(d.Property) {
				mark += " (vendor)"
			}
			tw.Line(1, "- %s: %s%s", d.Property, d.Value, mark)
		}
	}
	tw.Line(0, "Total: %d redundant declaration(s) in %d rule(s), filter %s", total, rules, m)
	return tw.String()
}

// WriteOutput writes data to <stem><suffix> in either the input file's directory or outDir.
func WriteOutput(inPath, outDir, suffix string, data []byte, overwrite bool) error {
	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(inPath)
	if outDir != "" {
		dir = outDir
	}
	outPath := filepath.Join(dir, stem+suffix)

	if _, err := os.Stat(outPath); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s (use -overwrite)", outPath)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}

// CheckText refuses data which looks like known binary format.
func CheckText(b []byte) error {
	kind, err := filetype.Match(b)
	if err == nil && kind != filetype.Unknown {
		return fmt.Errorf("input looks like %s, not a stylesheet", kind.MIME.Value)
	}
	return nil
}
