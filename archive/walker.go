// Package archive walks zip based containers (plain zip, epub) looking for
// entries to process.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// MaxEntrySize limits uncompressed size of a single entry ReadFile accepts.
const MaxEntrySize = 64 << 20

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk calls walkFn for every regular file in the archive with name under
// prefix for which match returns true (nil match accepts everything).
// Entries with absolute names or ".." components abort the walk.
func Walk(archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	prefix = cleanPrefix(prefix)
	for _, f := range r.File {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !underPrefix(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile returns uncompressed content of the entry.
func ReadFile(f *zip.File) ([]byte, error) {
	return readLimited(f.Name, f.UncompressedSize64, f.Open)
}

func readLimited(name string, size uint64, open func() (io.ReadCloser, error)) ([]byte, error) {
	if size > MaxEntrySize {
		return nil, fmt.Errorf("zip entry %q is too large (%d bytes)", name, size)
	}
	r, err := open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxEntrySize {
		return nil, fmt.Errorf("zip entry %q is too large", name)
	}
	return data, nil
}

func cleanPrefix(prefix string) string {
	return strings.TrimPrefix(path.Clean("/"+prefix), "/")
}

// underPrefix reports whether name is prefix itself or lies in prefix
// directory. Empty prefix covers everything.
func underPrefix(name, prefix string) bool {
	if prefix == "" || name == prefix {
		return true
	}
	return strings.HasPrefix(name, prefix+"/")
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
