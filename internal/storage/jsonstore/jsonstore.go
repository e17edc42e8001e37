// Package jsonstore reads and writes collection snapshots as JSON files.
// A snapshot is replaced atomically (temp file + rename) so a crash mid-write
// never leaves a truncated collection behind.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load unmarshals the snapshot at path into v. A missing file is not an
// error: v is left untouched so the caller starts with an empty collection.
func Load(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("jsonstore.Load: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("jsonstore.Load: unmarshal %s: %w", path, err)
	}
	return nil
}

// Save writes v as an indented JSON snapshot, replacing any previous file
// atomically.
func Save(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore.Save: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonstore.Save: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonstore.Save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonstore.Save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonstore.Save: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("jsonstore.Save: rename: %w", err)
	}
	return nil
}
