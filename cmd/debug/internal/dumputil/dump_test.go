package dumputil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cssdedup/css"
	"cssdedup/dedup"
)

func TestDuplicatesReport(t *testing.T) {
	sheet, err := css.NewParser(nil).Parse([]byte(`.a { color: red; -webkit-box-shadow: none; -webkit-box-shadow: 0 0 1px; color: blue; }
.b { color: red; }
.skip { color: red; color: blue; }`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	report := DuplicatesReport(sheet, dedup.MatchFunc(func(s string) bool { return s != ".skip" }))
	for _, want := range []string{
		`Rule ".a": 2 of 4 declarations redundant`,
		"  - color: red\n",
		"  - -webkit-box-shadow: none (vendor)\n",
		"Total: 2 redundant declaration(s) in 1 rule(s), filter func",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report does not contain %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, ".b") || strings.Contains(report, ".skip") {
		t.Errorf("unexpected rules in report:\n%s", report)
	}
	// report must not change the tree
	if got := len(sheet.RulesBySelector(".a")[0].Declarations()); got != 4 {
		t.Errorf("tree modified, %d declarations left", got)
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "site.css")

	if err := WriteOutput(in, "", "-tree.txt", []byte("tree"), false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "site-tree.txt"))
	if err != nil || string(data) != "tree" {
		t.Fatalf("unexpected output %q, %v", data, err)
	}

	if err := WriteOutput(in, "", "-tree.txt", []byte("again"), false); err == nil {
		t.Error("expected error for existing output")
	}
	if err := WriteOutput(in, "", "-tree.txt", []byte("again"), true); err != nil {
		t.Errorf("WriteOutput() with overwrite error = %v", err)
	}

	out := t.TempDir()
	if err := WriteOutput(in, out, "-dedup.css", []byte(".a {}"), false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "site-dedup.css")); err != nil {
		t.Errorf("output not written to outDir: %v", err)
	}
}

func TestCheckText(t *testing.T) {
	if err := CheckText([]byte(".a { color: red; }")); err != nil {
		t.Errorf("CheckText() error = %v", err)
	}
	if err := CheckText([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")); err == nil {
		t.Error("expected error for binary input")
	}
}
