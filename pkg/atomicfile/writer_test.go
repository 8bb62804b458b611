package atomicfile_test

import (
	"os"
	"path/filepath"
	"testing"

	. "armada/pkg/atomicfile"
)

func TestWriter_CommitPublishesContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")

	w, err := NewWriter(target, 0022)
	if err != nil {
		t.Fatalf("failed to open writer: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("hello ")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := w.Write([]byte("world")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := w.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("target missing after commit: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWriter_CommitAppliesUmaskToMode(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "mode-check")

	w, err := NewWriter(target, 0027)
	if err != nil {
		t.Fatalf("failed to open writer: %v", err)
	}
	defer w.Close()

	if err := w.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if got, want := info.Mode().Perm(), os.FileMode(0640); got != want {
		t.Errorf("expected mode %o, got %o", want, got)
	}
}

func TestWriter_CloseWithoutCommitLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "existing")
	if err := os.WriteFile(target, []byte("original"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	w, err := NewWriter(target, 0022)
	if err != nil {
		t.Fatalf("failed to open writer: %v", err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("target gone after abandoned write: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("target changed by abandoned write: %q", data)
	}

	// No staging files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target in %s, found %d entries", dir, len(entries))
	}
}

func TestWriter_CommitReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "replace-me")
	if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := WriteFile(target, []byte("new"), 0022); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, _ := os.ReadFile(target)
	if string(data) != "new" {
		t.Errorf("expected replaced content, got %q", data)
	}
}

func TestWriter_CommitTwice(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "twice"), 0022)
	if err != nil {
		t.Fatalf("failed to open writer: %v", err)
	}
	defer w.Close()

	if err := w.Commit(); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	if err := w.Commit(); err == nil {
		t.Error("expected error on second commit")
	}
}

func TestWriter_CloseAfterCommitIsNoop(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "committed")

	w, err := NewWriter(target, 0022)
	if err != nil {
		t.Fatalf("failed to open writer: %v", err)
	}
	if _, err := w.Write([]byte("kept")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close after commit errored: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil || string(data) != "kept" {
		t.Errorf("close after commit disturbed target: %q, %v", data, err)
	}
}
