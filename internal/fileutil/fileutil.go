// Package fileutil derives artifact paths and writes artifacts to disk.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: artifacts are meant to be shared
)

// PDFExtension is appended to the output prefix.
const PDFExtension = ".pdf"

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrNullInPath  = errors.New("path contains null byte")
	ErrPathIsDir   = errors.New("path is a directory")
	ErrEmptyPrefix = errors.New("output prefix cannot be empty")
)

// PDFPath returns the artifact path for an output prefix: "report" becomes
// "report.pdf". The prefix is used verbatim: "report.pdf" yields
// "report.pdf.pdf".
func PDFPath(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrEmptyPrefix
	}
	if strings.ContainsRune(prefix, 0) {
		return "", ErrNullInPath
	}
	return prefix + PDFExtension, nil
}

// Resolve joins a relative path onto dir. Absolute paths and an empty dir
// return path unchanged.
func Resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// WriteFile writes data to path, creating missing parent directories.
// An existing file is overwritten.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return ErrNullInPath
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathIsDir, path)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// #nosec G306 -- exported documents are intended to be readable
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirWritable reports whether a file can be created in dir.
func DirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".authpdf-writecheck-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
