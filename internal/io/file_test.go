package ioutils

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir on existing dir failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.json")
	entries := []map[string]string{{"videoURL": "u", "output": "o"}}

	if err := WriteJSON(context.Background(), path, entries); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got []map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON written: %v", err)
	}
	if len(got) != 1 || got[0]["videoURL"] != "u" {
		t.Errorf("unexpected content: %s", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".log.json.*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestWriteFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "x.txt")
	if err := WriteFile(ctx, path, []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should not be written after cancellation")
	}
}
