package filesystem

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyFile_BytesAndMetadata(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "apple-touch-icon.png")
	dst := filepath.Join(dir, "icon-72x72.png")
	data := []byte("\x89PNG\r\n\x1a\nsource")

	if err := os.WriteFile(src, data, 0o600); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("content = %q, want %q", got, data)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), mtime)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(dst + ".tmp"); !os.IsNotExist(err) {
		t.Error("unexpected .tmp file remains")
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "icon-96x96.png")

	if err := CopyFile(filepath.Join(dir, "missing.png"), dst); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("target should not be created when the source is missing")
	}
}

func TestCopyFile_DirectorySource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(dir, filepath.Join(dir, "out.png")); err == nil {
		t.Fatal("expected error when source is a directory")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.png")
	if Exists(f) {
		t.Error("missing file reported as existing")
	}
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(f) {
		t.Error("existing file reported as missing")
	}
	if Exists(dir) {
		t.Error("directory should not count as a file")
	}
}
