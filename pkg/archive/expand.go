// Package archive expands downloaded zip bundles.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// ErrUnsafePath is returned for an entry that would land outside the target directory.
var ErrUnsafePath = errors.New("archive entry escapes target directory")

// Expand extracts every .zip file found directly in sourceDir into targetDir and
// returns the archives it processed. Entries from different archives share one
// flat namespace; a later archive overwrites an earlier one's file of the same name.
func Expand(sourceDir, targetDir string) ([]string, error) {
	store := &storage.Storage{}
	if err := store.EnsureDir(targetDir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourceDir, err)
	}

	var done []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		src := filepath.Join(sourceDir, e.Name())
		if err := extract(src, targetDir); err != nil {
			return done, fmt.Errorf("failed to extract %s: %w", src, err)
		}
		done = append(done, src)
	}
	return done, nil
}

func extract(src, targetDir string) error {
	r, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		if r != nil {
			r.Close()
		}
		return fmt.Errorf("%w: %s", ErrUnsafePath, filepath.Base(src))
	}
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		dest, err := safeJoin(targetDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0750); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
			return err
		}
		if err := writeEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func safeJoin(targetDir, name string) (string, error) {
	dest := filepath.Join(targetDir, name)
	rel, err := filepath.Rel(targetDir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return dest, nil
}

func writeEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
