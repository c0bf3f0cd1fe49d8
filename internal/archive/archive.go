package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/readstack-hq/pocket2notion/internal/logger"
)

// Package archive unpacks export bundles and locates the tabular files inside.

var (
	// ErrNotFound indicates the bundle path does not exist.
	ErrNotFound = errors.New("bundle not found")
	// ErrCorruptArchive indicates the bundle could not be read as a zip archive.
	ErrCorruptArchive = errors.New("corrupt archive")
)

const csvSuffix = ".csv"

// ExtractCSV extracts the bundle's full contents into the bundle's parent
// directory and returns the paths of extracted files ending in .csv.
func ExtractCSV(bundlePath string) ([]string, error) {
	if _, err := os.Stat(bundlePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, bundlePath)
		}
		return nil, fmt.Errorf("stat bundle: %w", err)
	}

	reader, err := zip.OpenReader(bundlePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrCorruptArchive, bundlePath)
		}
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer reader.Close()

	extractDir := filepath.Dir(bundlePath)
	var csvPaths []string

	for _, entry := range reader.File {
		dest, err := extractEntry(entry, extractDir)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", entry.Name, err)
		}
		if dest == "" {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name), csvSuffix) {
			csvPaths = append(csvPaths, dest)
		}
	}

	logger.InfoObj("bundle extracted", "bundle_meta", map[string]any{
		"bundle":    bundlePath,
		"csv_files": len(csvPaths),
	})
	return csvPaths, nil
}

// extractEntry writes one archive entry under dir, refusing paths that would
// escape it. Returns the destination path, or "" for directory entries.
func extractEntry(entry *zip.File, dir string) (string, error) {
	name := filepath.Clean(entry.Name)
	if name == "." || strings.HasPrefix(name, ".."+string(os.PathSeparator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("illegal entry path %q", entry.Name)
	}

	dest := filepath.Join(dir, name)
	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return "", err
		}
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}

	src, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return dest, nil
}
