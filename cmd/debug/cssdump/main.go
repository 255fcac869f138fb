// cssdump parses a stylesheet and produces debugging views of it: the parsed
// tree, the list of declarations deduplication would remove and the
// deduplicated result, each into its own file next to the input.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"cssdedup/cmd/debug/internal/dumputil"
	"cssdedup/css"
	"cssdedup/dedup"
)

func main() {
	all := flag.Bool("all", false, "enable all dump flags (-tree, -duplicates, -result)")
	tree := flag.Bool("tree", false, "dump parsed tree into <file>-tree.txt")
	duplicates := flag.Bool("duplicates", false, "list redundant declarations into <file>-duplicates.txt")
	result := flag.Bool("result", false, "write deduplicated stylesheet into <file>-dedup.css")
	selector := flag.String("selector", "", "consider only rules with selector containing `TEXT`")
	regexp := flag.Bool("regexp", false, "treat -selector as ECMAScript regular expression")
	preserve := flag.Bool("preserve-empty", false, "keep rules left without declarations in -result")
	overwrite := flag.Bool("overwrite", false, "overwrite existing output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: cssdump [-all] [-tree] [-duplicates] [-result] [-selector TEXT [-regexp]] [-preserve-empty] [-overwrite] <file.css> [outdir]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	if *all {
		*tree = true
		*duplicates = true
		*result = true
	}

	if !*tree && !*duplicates && !*result {
		flag.Usage()
		os.Exit(2)
	}

	defer func(startedAt time.Time) {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", time.Since(startedAt))
	}(time.Now())

	inPath := flag.Arg(0)
	outDir := ""
	if flag.NArg() == 2 {
		outDir = flag.Arg(1)
	}

	m := dedup.MatchSubstring(*selector)
	if *regexp {
		p, err := dedup.CompilePattern(*selector)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad selector pattern: %v\n", err)
			os.Exit(2)
		}
		m = dedup.MatchPattern(p)
	}

	b, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", inPath, err)
		os.Exit(1)
	}
	if err := dumputil.CheckText(b); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		os.Exit(1)
	}

	sheet, err := css.NewParser(nil).Parse(b, inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", inPath, err)
		os.Exit(1)
	}

	if *tree {
		if err := dumputil.DumpTree(sheet, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "write tree: %v\n", err)
			os.Exit(1)
		}
	}

	if *duplicates {
		if err := dumputil.DumpDuplicates(sheet, m, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "write duplicates: %v\n", err)
			os.Exit(1)
		}
	}

	// must be last, transform changes the tree
	if *result {
		stats, err := dedup.Run(sheet, dedup.Options{Selector: m, PreserveEmpty: *preserve})
		if err != nil {
			fmt.Fprintf(os.Stderr, "dedup: %v\n", err)
			os.Exit(1)
		}
		if err := dumputil.WriteOutput(inPath, outDir, "-dedup.css", []byte(sheet.String()), *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "write result: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "rules: %d, filtered: %d, removed: %d (vendor %d), pruned: %d, faults: %d\n",
			stats.Rules, stats.Filtered, stats.Removed, stats.VendorRemoved, stats.Pruned, stats.Faults)
	}
}
