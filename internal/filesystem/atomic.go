package filesystem

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// WriteFileAtomic replaces target with data using the tmp/bak/rename pattern,
// so an interrupted run leaves either the old asset or the new one on disk.
//
// Steps:
//  1. Write data to <target>.tmp
//  2. If <target> exists, rename it to <target>.bak
//  3. Rename <target>.tmp to <target>
//  4. Remove <target>.bak
//
// The parent directory is created when missing.
func WriteFileAtomic(target string, data []byte, perm os.FileMode) error {
	tmpPath := target + ".tmp"
	bakPath := target + ".bak"

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:gosec // G301: generated site assets are world-readable
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if _, err := os.Stat(target); err == nil {
		if err := os.Rename(target, bakPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("backing up existing file: %w", err)
		}
	}

	if err := os.Rename(tmpPath, target); err != nil {
		if _, bakErr := os.Stat(bakPath); bakErr == nil {
			_ = os.Rename(bakPath, target)
		}
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp to target: %w", err)
	}

	_ = os.Remove(bakPath)
	return nil
}

// WriteIfChanged writes data to target unless target already holds the same
// bytes. It reports whether a write happened.
func WriteIfChanged(target string, data []byte, perm os.FileMode) (bool, error) {
	same, err := SameContent(target, data)
	if err != nil {
		return false, err
	}
	if same {
		return false, nil
	}
	if err := WriteFileAtomic(target, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// SameContent reports whether the file at path has exactly the given content.
// A missing file is not an error; it simply differs.
func SameContent(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path) //nolint:gosec // G304: path is a configured output location
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading existing file: %w", err)
	}
	if len(existing) != len(data) {
		return false, nil
	}
	return Digest(existing) == Digest(data), nil
}

// Digest returns the BLAKE2b-256 sum of data.
func Digest(data []byte) [blake2b.Size256]byte {
	return blake2b.Sum256(data)
}

// DigestHex is Digest rendered as a short hex prefix for log lines.
func DigestHex(data []byte) string {
	sum := Digest(data)
	return hex.EncodeToString(sum[:6])
}
