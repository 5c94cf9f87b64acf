package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// BytesPerMB converts byte counts to the megabytes catalog sizes are reported in.
const BytesPerMB = 1024 * 1024

type Storage struct{}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// SizeMB returns the file size in megabytes.
func (st *FileStats) SizeMB() float64 {
	return float64(st.SizeBytes) / BytesPerMB
}

// EnsureDir creates dir and its parents if they are missing.
func (s *Storage) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *Storage) HasFile(fn string) bool {
	return fileExists(fn)
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// RemoveFile deletes filePath. A file that is already gone is not an error.
func (s *Storage) RemoveFile(filePath string) error {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error removing file: %w", err)
	}
	return nil
}
