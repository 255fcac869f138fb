package archive

import (
	"fmt"
	"io"

	fixzip "github.com/hidez8891/zip"
)

// RewriteFunc returns new content for the entry. Returning nil data keeps
// the entry unchanged.
type RewriteFunc func(name string, data []byte) ([]byte, error)

// Rewrite writes copy of the archive to w preserving entry order. Entries
// under prefix accepted by match are passed to fn, everything else is copied
// raw without recompression, so epub "mimetype" stays first and stored.
func Rewrite(archive string, w io.Writer, prefix string, match func(name string) bool, fn RewriteFunc) error {
	r, err := fixzip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", archive, err)
	}
	defer r.Close()

	zw := fixzip.NewWriter(w)
	prefix = cleanPrefix(prefix)
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}

		selected := !f.FileInfo().IsDir() && underPrefix(f.Name, prefix) && (match == nil || match(f.Name))
		if !selected {
			if err := zw.CopyFile(f); err != nil {
				return fmt.Errorf("unable to copy zip entry %q: %w", f.Name, err)
			}
			continue
		}

		data, err := readLimited(f.Name, f.UncompressedSize64, f.Open)
		if err != nil {
			return err
		}
		data, err = fn(f.Name, data)
		if err != nil {
			return err
		}
		if data == nil {
			if err := zw.CopyFile(f); err != nil {
				return fmt.Errorf("unable to copy zip entry %q: %w", f.Name, err)
			}
			continue
		}

		fh := f.FileHeader
		fh.Method = fixzip.Deflate
		ew, err := zw.CreateHeader(&fh)
		if err != nil {
			return fmt.Errorf("unable to create zip entry %q: %w", f.Name, err)
		}
		if _, err := ew.Write(data); err != nil {
			return fmt.Errorf("unable to write zip entry %q: %w", f.Name, err)
		}
	}
	return zw.Close()
}
