package process

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"cssdedup/archive"
	"cssdedup/css"
	"cssdedup/dedup"
	"cssdedup/state"
)

// target is where processed stylesheet goes: file or writer.
type target struct {
	path      string
	overwrite bool
	out       io.Writer
}

func newTarget(root, rel, dst string, overwrite bool, out io.Writer) target {
	switch {
	case len(dst) > 0:
		return target{path: filepath.Join(dst, rel), overwrite: overwrite}
	case overwrite:
		// in place
		return target{path: filepath.Join(root, rel), overwrite: true}
	default:
		return target{out: out}
	}
}

func (t target) String() string {
	if len(t.path) == 0 {
		return "STDOUT"
	}
	return t.path
}

// errSkipOutput may be returned by producer passed to writeWith to drop
// output which turned out to be unnecessary.
var errSkipOutput = errors.New("output skipped")

func (t target) write(data []byte) error {
	return t.writeWith(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (t target) writeWith(produce func(w io.Writer) error) error {
	if len(t.path) == 0 {
		return produce(t.out)
	}

	if !t.overwrite {
		if _, err := os.Stat(t.path); err == nil {
			return fmt.Errorf("output file already exists (%s)", t.path)
		}
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	// write next to destination and rename, so failure never leaves partial file
	f, err := os.CreateTemp(dir, ".cssdedup-*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer os.Remove(f.Name())

	if err := produce(f); err != nil {
		f.Close()
		if errors.Is(err, errSkipOutput) {
			return nil
		}
		return fmt.Errorf("unable to write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	if err := os.Rename(f.Name(), t.path); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	return nil
}

// isArchiveFile checks file signature for zip based containers.
func isArchiveFile(fname string) (bool, error) {
	f, err := os.Open(fname)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// enough for any signature filetype knows about
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	kind, _ := filetype.Match(head[:n])
	return kind.Extension == "zip" || kind.Extension == "epub", nil
}

// decodeStylesheet refuses recognizable binary content and converts data to
// UTF-8. Byte order mark wins over leading @charset rule, without either
// data is UTF-8. Returned encoding is nil for UTF-8 input, otherwise it is
// the one to encode results with.
func decodeStylesheet(data []byte) ([]byte, encoding.Encoding, error) {
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return nil, nil, fmt.Errorf("not a stylesheet, content looks like %s", kind.MIME.Value)
	}

	// with byte order mark data cannot start with @charset rule
	if label := declaredCharset(data); len(label) > 0 {
		enc, name := charset.Lookup(label)
		// utf-16 cannot be declared from inside of ASCII compatible text
		if enc != nil && name != "utf-8" && !strings.HasPrefix(name, "utf-16") {
			r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
			if err != nil {
				return nil, nil, fmt.Errorf("unable to decode stylesheet: %w", err)
			}
			if data, err = io.ReadAll(r); err != nil {
				return nil, nil, fmt.Errorf("unable to decode stylesheet from %s: %w", name, err)
			}
			return data, enc, nil
		}
	}

	data, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to decode stylesheet: %w", err)
	}
	return data, nil, nil
}

// encodeStylesheet converts UTF-8 result back to the encoding source was
// declared in.
func encodeStylesheet(data []byte, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		return data, nil
	}
	data, _, err := transform.Bytes(enc.NewEncoder(), data)
	if err != nil {
		return nil, fmt.Errorf("unable to encode stylesheet: %w", err)
	}
	return data, nil
}

// declaredCharset returns label of @charset rule, which has to start the
// stylesheet exactly as `@charset "label";`.
func declaredCharset(data []byte) string {
	const prefix = `@charset "`
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return ""
	}
	rest := data[len(prefix):]
	if i := bytes.Index(rest, []byte(`";`)); i > 0 && i <= 64 {
		return string(rest[:i])
	}
	return ""
}

// processFile runs transform on a single stylesheet. "rel" is path relative
// to processed source, used for output naming and debug report.
func processFile(ctx context.Context, fname, rel string, t target, log *zap.Logger) (dedup.Stats, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return dedup.Stats{}, err
	}
	return processData(ctx, data, rel, t, log)
}

// processEntry is processFile for stylesheet inside archive, name is path
// the result is stored under.
func processEntry(ctx context.Context, f *zip.File, name string, t target, log *zap.Logger) (dedup.Stats, error) {
	data, err := archive.ReadFile(f)
	if err != nil {
		return dedup.Stats{}, err
	}
	return processData(ctx, data, name, t, log)
}

func processData(ctx context.Context, data []byte, rel string, t target, log *zap.Logger) (dedup.Stats, error) {
	env := state.EnvFromContext(ctx)

	result, stats, err := transformStylesheet(ctx, data, rel, log)
	if err != nil {
		return stats, err
	}

	name := filepath.ToSlash(rel)
	if !stats.Changed() && env.Cfg.Output.SkipUnchanged && len(t.path) > 0 {
		log.Debug("Nothing removed, skipping output", zap.String("file", name))
		return stats, nil
	}
	if err := t.write(result); err != nil {
		return stats, err
	}
	log.Debug("Stylesheet written", zap.String("file", name), zap.Stringer("to", t), zap.Object("stats", stats))
	return stats, nil
}

// transformStylesheet decodes, parses, deduplicates and prints single
// stylesheet recording every stage in debug report.
func transformStylesheet(ctx context.Context, data []byte, rel string, log *zap.Logger) ([]byte, dedup.Stats, error) {
	env := state.EnvFromContext(ctx)
	name := filepath.ToSlash(rel)

	data, enc, err := decodeStylesheet(data)
	if err != nil {
		return nil, dedup.Stats{}, err
	}
	env.Rpt.StoreData(path.Join("input", name), data)

	sheet, err := css.NewParser(log).Parse(data, name)
	if err != nil {
		return nil, dedup.Stats{}, err
	}

	stats, err := dedup.New(env.Options, log).Run(sheet)
	if err != nil {
		return nil, stats, err
	}

	text := []byte(sheet.String())
	env.Rpt.StoreData(path.Join("output", name), text)
	env.Rpt.StoreData(path.Join("tree", name+".txt"), []byte(sheet.Dump()))

	result, err := encodeStylesheet(text, enc)
	if err != nil {
		return nil, stats, err
	}
	return result, stats, nil
}
