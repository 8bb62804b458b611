// Package atomicfile gives readers all-or-nothing visibility of file
// contents: a write scope stages into a hidden sibling file and publishes it
// over the target with a single rename.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// maxMode caps the published permission bits; the effective mode is
// maxMode with the writer's umask bits cleared.
const maxMode os.FileMode = 0666

// Writer is an open write scope against a target path. Content written to
// it lands in a staging file in the target's directory — same directory is
// required, a cross-filesystem rename would not be atomic. Commit publishes
// the staging file; Close before Commit discards it and leaves the target
// untouched.
type Writer struct {
	target    string
	umask     os.FileMode
	staging   *os.File
	committed bool
}

// NewWriter opens a write scope. The umask is passed explicitly rather than
// read from ambient process state; use sysinfo.CurrentUmask at startup if
// the caller wants the process default.
func NewWriter(target string, umask os.FileMode) (*Writer, error) {
	dir := filepath.Dir(target)
	base := filepath.Base(target)

	f, err := os.CreateTemp(dir, "."+base+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file for %s: %w", target, err)
	}
	return &Writer{target: target, umask: umask, staging: f}, nil
}

// Write appends to the staging file.
func (w *Writer) Write(p []byte) (int, error) {
	return w.staging.Write(p)
}

// Commit sets the staging file's mode to 0666 with the umask bits cleared
// and renames it over the target in one filesystem operation. On any error
// the staging file is removed and the target is left as it was.
func (w *Writer) Commit() error {
	if w.committed {
		return errors.New("atomicfile: scope already committed")
	}
	name := w.staging.Name()

	if err := w.staging.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.Chmod(name, maxMode&^w.umask); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to set staging file mode: %w", err)
	}
	if err := os.Rename(name, w.target); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to publish %s: %w", w.target, err)
	}
	w.committed = true
	return nil
}

// Close cleans up an uncommitted scope; after Commit it is a no-op. Always
// safe to defer.
func (w *Writer) Close() error {
	if w.committed {
		return nil
	}
	w.staging.Close()
	if err := os.Remove(w.staging.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteFile atomically replaces target with data.
func WriteFile(target string, data []byte, umask os.FileMode) error {
	w, err := NewWriter(target, umask)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write staging content: %w", err)
	}
	return w.Commit()
}
