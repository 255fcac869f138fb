// Package process implements dedup subcommand: finding stylesheets, running
// the transform and writing results.
package process

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cssdedup/archive"
	"cssdedup/config"
	"cssdedup/dedup"
	"cssdedup/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("dedup")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if env.Options, err = env.Cfg.Transform.Options(); err != nil {
		return fmt.Errorf("unable to prepare selector filter: %w", err)
	}
	if cmd.IsSet("selector") {
		if env.Options.Selector, err = selectorFromFlags(cmd.String("selector"), cmd.Bool("regexp")); err != nil {
			return err
		}
	}
	if cmd.IsSet("preserve-empty") {
		env.Options.PreserveEmpty = cmd.Bool("preserve-empty")
	}
	env.Overwrite = cmd.Bool("overwrite")
	env.ArchiveMode = env.Cfg.Output.Archive
	if cmd.Bool("extract") {
		env.ArchiveMode = config.ArchiveModeExtract
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.Stringer("selector", env.Options.Selector), zap.Bool("preserve_empty", env.Options.PreserveEmpty))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return process(ctx, src, dst, out, log)
}

func selectorFromFlags(value string, regexp bool) (dedup.Matcher, error) {
	if !regexp {
		return dedup.MatchSubstring(value), nil
	}
	p, err := dedup.CompilePattern(value)
	if err != nil {
		return dedup.MatchAll(), err
	}
	return dedup.MatchPattern(p), nil
}

// process handles the core logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and
// processes accordingly. Single file without destination goes to out,
// directory requires destination unless files are rewritten in place,
// archive always requires destination.
func process(ctx context.Context, src, dst string, out io.Writer, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			files, err := findStylesheets(ctx, head, log)
			if err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			if len(dst) == 0 && !state.EnvFromContext(ctx).Overwrite {
				return errors.New("destination is required when processing directory without --overwrite")
			}
			return processFiles(ctx, head, files, dst, out, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			if len(dst) == 0 {
				return errors.New("destination is required when processing archive")
			}
			pathIn := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			return processArchive(ctx, head, pathIn, dst, log)
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		return processFiles(ctx, filepath.Dir(head), []string{filepath.Base(head)}, dst, out, log)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processFiles handles list of stylesheets relative to root, failure of a
// single file does not stop processing.
func processFiles(ctx context.Context, root string, files []string, dst string, out io.Writer, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	if len(files) == 0 {
		log.Debug("Nothing to process", zap.String("dir", root))
	}

	var (
		total dedup.Stats
		errs  error
	)
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := newTarget(root, rel, dst, env.Overwrite, out)
		stats, err := processFile(ctx, filepath.Join(root, rel), rel, target, log)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", rel), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", rel, err))
			continue
		}
		total.Add(stats)
	}

	log.Info("Stylesheets processed", zap.Int("files", len(files)), zap.Int("failed", len(multierr.Errors(errs))), zap.Object("stats", total))
	return errs
}

// processArchive handles all stylesheets inside archive under "pathIn".
// Depending on mode either new archive with the same name is written to dst
// or results are extracted to dst keeping paths inside archive.
func processArchive(ctx context.Context, path, pathIn, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	var (
		total dedup.Stats
		count int
		errs  error
	)
	defer func() {
		if err != nil {
			return
		}
		if count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path), zap.String("path", pathIn))
		}
		log.Info("Stylesheets processed", zap.String("archive", path), zap.Int("files", count),
			zap.Int("failed", len(multierr.Errors(errs))), zap.Object("stats", total))
		err = errs
	}()

	if env.ArchiveMode == config.ArchiveModeRepack {
		t := newTarget("", filepath.Base(path), dst, env.Overwrite, nil)
		err = t.writeWith(func(w io.Writer) error {
			err := archive.Rewrite(path, w, pathIn, isStylesheet, func(name string, data []byte) ([]byte, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				count++

				result, stats, err := transformStylesheet(ctx, data, filepath.FromSlash(name), log)
				if err != nil {
					// original entry is kept
					log.Error("Unable to process file in archive", zap.String("archive", path), zap.String("file", name), zap.Error(err))
					errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
					return nil, nil
				}
				total.Add(stats)
				if !stats.Changed() {
					return nil, nil
				}
				return result, nil
			})
			if err == nil && !total.Changed() && env.Cfg.Output.SkipUnchanged {
				log.Debug("Nothing removed, skipping output", zap.String("archive", path))
				return errSkipOutput
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("unable to process archive: %w", err)
		}
		return nil
	}

	err = archive.Walk(path, pathIn, isStylesheet, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++

		name := entryName(ctx, f, log)
		stats, err := processEntry(ctx, f, filepath.FromSlash(name), newTarget("", filepath.FromSlash(name), dst, env.Overwrite, nil), log)
		if err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.Name, err))
			return nil
		}
		total.Add(stats)
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to process archive: %w", err)
	}
	return nil
}

// entryName returns name of archive entry converting it from forced code
// page when requested.
func entryName(ctx context.Context, f *zip.File, log *zap.Logger) string {
	cp := state.EnvFromContext(ctx).CodePage
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	n, err := cp.NewDecoder().String(f.Name)
	if err != nil {
		cs, _ := ianaindex.IANA.Name(cp)
		log.Warn("Unable to convert archive name from specified encoding",
			zap.String("charset", cs), zap.String("path", f.Name), zap.Error(err))
		return f.Name
	}
	return n
}

func isStylesheet(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".css")
}

// findStylesheets walks directory tree and returns relative paths of all
// css files in natural order.
func findStylesheets(ctx context.Context, dir string, log *zap.Logger) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() || !isStylesheet(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	slices.SortFunc(files, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		default:
			return 0
		}
	})
	return files, err
}
