package shapefile

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// SidecarExts are the extensions removed together with an empty shapefile.
var SidecarExts = []string{"shp", "shx", "dbf", "prj", "cpg", "sbx", "sbn"}

// PruneReport lists what PruneEmpty did.
type PruneReport struct {
	Deleted    []string `json:"deleted" yaml:"deleted"`       // stems whose files were removed
	Unreadable []string `json:"unreadable" yaml:"unreadable"` // shapefiles that could not be opened
}

// PruneEmpty deletes every shapefile in folder that has zero features, along with
// all sidecar files sharing its stem. Unreadable shapefiles are logged and left alone.
func PruneEmpty(folder string, logger *slog.Logger) (*PruneReport, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	paths, err := filepath.Glob(filepath.Join(folder, "*.shp"))
	if err != nil {
		return nil, fmt.Errorf("failed to list shapefiles in %s: %w", folder, err)
	}

	store := &storage.Storage{}
	report := &PruneReport{}
	for _, path := range paths {
		empty, err := isEmpty(path)
		if err != nil {
			logger.Warn("Cannot read shapefile, skipping", "file", filepath.Base(path), "error", err)
			report.Unreadable = append(report.Unreadable, filepath.Base(path))
			continue
		}
		if !empty {
			continue
		}

		stem := strings.TrimSuffix(path, filepath.Ext(path))
		for _, ext := range SidecarExts {
			if err := store.RemoveFile(stem + "." + ext); err != nil {
				return report, fmt.Errorf("failed to delete %s.%s: %w", stem, ext, err)
			}
		}
		report.Deleted = append(report.Deleted, filepath.Base(stem))
	}
	return report, nil
}

func isEmpty(path string) (bool, error) {
	if err := checkHeader(path); err != nil {
		return false, err
	}
	dbf := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbf); err != nil {
		return false, fmt.Errorf("missing attribute table: %w", err)
	}
	r, err := shp.Open(path)
	if err != nil {
		return false, err
	}
	defer r.Close()
	if r.Next() {
		return false, nil
	}
	if err := r.Err(); err != nil {
		return false, err
	}
	return true, nil
}

// shpFileCode opens every .shp main file header, big-endian.
const shpFileCode = 9994

// checkHeader rejects files that are too short or lack the shapefile magic number.
func checkHeader(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, 100)
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("truncated header: %w", err)
	}
	if code := binary.BigEndian.Uint32(header[:4]); code != shpFileCode {
		return fmt.Errorf("bad file code %d", code)
	}
	return nil
}
