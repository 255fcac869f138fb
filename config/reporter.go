package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"cssdedup/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	r.file = f
	return r, nil
}

type entry struct {
	original string // path as it was given, empty for data entries
	actual   string // absolute path
	stamp    time.Time
	data     []byte
}

// Report accumulates files and data to be archived when debugging is requested.
// All methods are safe to call on nil Report (no report requested).
// NOTE: not to be used concurrently!
type Report struct {
	entries map[string]entry
	file    *os.File
}

// Close writes the archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

// Name returns name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file to be put in the archive under name. File is read
// when report is closed, so it may still be written to.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if old, exists := r.entries[name]; exists && old.original != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.original, path))
	}

	e := entry{original: path, actual: path}
	if p, err := filepath.Abs(path); err == nil {
		e.actual = p
	}
	r.entries[name] = e
}

// StoreData puts copy of data in the archive under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	r.entries[name] = entry{data: bytes.Clone(data), stamp: time.Now()}
}

func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names, manifest := prepareManifest(r.entries)
	if err := saveFile(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if e.original == "" {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		if err := saveStored(arc, name, e.actual); err != nil {
			return err
		}
	}
	return arc.Close()
}

// saveStored archives regular file, absent files are ignored.
func saveStored(arc *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(arc, name, info.ModTime(), f)
}

func prepareManifest(entries map[string]entry) ([]string, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	if len(entries) == 0 {
		return nil, buf
	}

	now := time.Now()
	names := make([]string, 0, len(entries))
	for k := range entries {
		names = append(names, k)
	}
	slices.Sort(names)

	for _, k := range names {
		e := entries[k]
		if e.stamp.IsZero() {
			e.stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", e.stamp.UTC().Format(time.UnixDate), k, e.original, e.actual)
	}
	return names, buf
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
