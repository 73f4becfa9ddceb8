package ioutils

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never observe a partially written file.
//
// The parent directory is created if needed and the file gets mode 0644.
// ctx is checked before anything is written.
//
// Example:
//
//	err := WriteFile(ctx, "/downloads/Course/notes.txt", []byte("..."))
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// WriteJSON writes v as indented JSON to path using WriteFile.
func WriteJSON(ctx context.Context, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFile(ctx, path, append(data, '\n'))
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/downloads/Course/Section/Unit")
//	// Creates every missing level of the path
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
