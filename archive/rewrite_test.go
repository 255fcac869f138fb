package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createEpub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	mw, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatal(err)
	}
	mw.Write([]byte("application/epub+zip"))
	for _, e := range []struct{ name, content string }{
		{"OEBPS/", ""},
		{"OEBPS/style.css", ".a { color: red; }"},
		{"OEBPS/keep.css", ".b { color: red; }"},
		{"OEBPS/index.xhtml", "<html/>"},
	} {
		ew, err := w.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		ew.Write([]byte(e.content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRewrite(t *testing.T) {
	src := createEpub(t)

	var seen []string
	var buf bytes.Buffer
	err := Rewrite(src, &buf, "OEBPS", isCSS, func(name string, data []byte) ([]byte, error) {
		seen = append(seen, name)
		if name == "OEBPS/keep.css" {
			return nil, nil
		}
		return []byte(strings.ToUpper(string(data))), nil
	})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if strings.Join(seen, ",") != "OEBPS/style.css,OEBPS/keep.css" {
		t.Errorf("visited %v", seen)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("result is not an archive: %v", err)
	}

	var names []string
	content := make(map[string]string)
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		content[f.Name] = string(data)
	}

	want := "mimetype,OEBPS/,OEBPS/style.css,OEBPS/keep.css,OEBPS/index.xhtml"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("entries %s, want %s", got, want)
	}
	if zr.File[0].Method != zip.Store {
		t.Error("mimetype must stay stored")
	}
	if content["mimetype"] != "application/epub+zip" {
		t.Errorf("mimetype = %q", content["mimetype"])
	}
	if content["OEBPS/style.css"] != ".A { COLOR: RED; }" {
		t.Errorf("rewritten entry = %q", content["OEBPS/style.css"])
	}
	if content["OEBPS/keep.css"] != ".b { color: red; }" {
		t.Errorf("kept entry = %q", content["OEBPS/keep.css"])
	}
	if content["OEBPS/index.xhtml"] != "<html/>" {
		t.Errorf("copied entry = %q", content["OEBPS/index.xhtml"])
	}
}

func TestRewrite_Error(t *testing.T) {
	src := createEpub(t)
	boom := errors.New("boom")

	err := Rewrite(src, io.Discard, "", isCSS, func(string, []byte) ([]byte, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Rewrite() error = %v, want %v", err, boom)
	}
}

func TestRewrite_NotArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	if err := os.WriteFile(path, []byte(".a {}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Rewrite(path, io.Discard, "", nil, nil); err == nil {
		t.Error("expected error")
	}
}
