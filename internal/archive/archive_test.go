package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeBundle creates a zip at path with the given name -> content entries.
func writeBundle(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
}

func TestExtractCSVReturnsOnlyCSVPaths(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "export.zip")
	writeBundle(t, bundle, map[string]string{
		"part_000000.csv": "title,url\n",
		"part_000001.csv": "title,url\n",
		"readme.txt":      "not a csv",
	})

	paths, err := ExtractCSV(bundle)
	if err != nil {
		t.Fatalf("ExtractCSV: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 csv paths, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if filepath.Dir(p) != dir {
			t.Fatalf("expected extraction into bundle dir %s, got %s", dir, p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("extracted file missing: %v", err)
		}
	}
	// Non-csv entries are still extracted, just not returned.
	if _, err := os.Stat(filepath.Join(dir, "readme.txt")); err != nil {
		t.Fatalf("expected readme.txt extracted: %v", err)
	}
}

func TestExtractCSVMissingBundle(t *testing.T) {
	_, err := ExtractCSV(filepath.Join(t.TempDir(), "nope.zip"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractCSVCorruptBundle(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(bundle, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := ExtractCSV(bundle)
	if !errors.Is(err, ErrCorruptArchive) {
		t.Fatalf("expected ErrCorruptArchive, got %v", err)
	}
}

func TestExtractCSVRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	bundle := filepath.Join(sub, "evil.zip")

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("../escape.csv")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := f.Write([]byte("title,url\n")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := os.WriteFile(bundle, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}

	if _, err := ExtractCSV(bundle); err == nil {
		t.Fatalf("expected error for entry escaping the extraction dir")
	}
}
