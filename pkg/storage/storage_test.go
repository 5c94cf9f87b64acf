package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileStats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.nc")
	if err := os.WriteFile(path, make([]byte, BytesPerMB/2), 0644); err != nil {
		t.Fatal(err)
	}

	s := &Storage{}
	stats, err := s.GetFileStats(path)
	if err != nil {
		t.Fatalf("GetFileStats() error = %v", err)
	}
	if stats.SizeMB() != 0.5 {
		t.Errorf("SizeMB() = %v, want 0.5", stats.SizeMB())
	}

	if _, err := s.GetFileStats(filepath.Join(dir, "missing")); err == nil {
		t.Error("GetFileStats() on missing file error = nil")
	}
}

func TestHasFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.nc")
	s := &Storage{}

	if s.HasFile(path) {
		t.Error("HasFile() = true before file exists")
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !s.HasFile(path) {
		t.Error("HasFile() = false after write")
	}
	if s.HasFile(dir) {
		t.Error("HasFile() = true for a directory")
	}
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.nc")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	s := &Storage{}
	if err := s.RemoveFile(path); err != nil {
		t.Fatalf("RemoveFile() error = %v", err)
	}
	if s.HasFile(path) {
		t.Error("file still present after RemoveFile()")
	}
	if err := s.RemoveFile(path); err != nil {
		t.Errorf("RemoveFile() on missing file error = %v, want nil", err)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s := &Storage{}
	if err := s.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := s.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() second call error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}
