package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExpand(t *testing.T) {
	src := t.TempDir()
	target := filepath.Join(t.TempDir(), "unzipped", "nested")

	writeZip(t, filepath.Join(src, "a.zip"), map[string]string{"river.shp": "from-a", "only-a.txt": "a"})
	writeZip(t, filepath.Join(src, "b.zip"), map[string]string{"river.shp": "from-b"})
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("ignored"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(src, "dir.zip"), 0750); err != nil {
		t.Fatal(err)
	}

	done, err := Expand(src, target)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(done) != 2 {
		t.Fatalf("Expand() processed %v, want 2 archives", done)
	}

	got, err := os.ReadFile(filepath.Join(target, "river.shp"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "from-b" {
		t.Errorf("river.shp = %q, want last archive to win", got)
	}
	if _, err := os.Stat(filepath.Join(target, "only-a.txt")); err != nil {
		t.Errorf("only-a.txt missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "notes.txt")); !os.IsNotExist(err) {
		t.Error("non-archive file copied into target")
	}
}

func TestExpand_NoArchives(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")
	done, err := Expand(t.TempDir(), target)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(done) != 0 {
		t.Errorf("Expand() = %v, want none", done)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("target not created: %v", err)
	}
}

func TestExpand_RejectsEscapingEntries(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	target := filepath.Join(root, "out")
	writeZip(t, filepath.Join(src, "evil.zip"), map[string]string{"../escaped.txt": "x"})

	_, err := Expand(src, target)
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("Expand() error = %v, want ErrUnsafePath", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escaped.txt")); !os.IsNotExist(err) {
		t.Error("entry written outside target")
	}
}

func TestExpand_MissingSource(t *testing.T) {
	if _, err := Expand(filepath.Join(t.TempDir(), "nope"), t.TempDir()); err == nil {
		t.Error("Expand() error = nil, want missing source error")
	}
}
