package download

import (
	"path/filepath"

	"github.com/Gismakerr/DaChuang/pkg/db"
	"github.com/Gismakerr/DaChuang/pkg/reconcile"
)

// BuildRun converts an outcome into ledger rows.
func BuildRun(shortName, dir string, o *reconcile.Outcome) (db.Run, []db.RunGranule) {
	run := db.Run{
		ShortName:   shortName,
		DownloadDir: dir,
		Total:       o.Total,
		Skipped:     o.Skipped,
		Removed:     o.Removed,
		Fetched:     len(o.Fetched),
	}

	fetched := make(map[string]bool, len(o.Fetched))
	for _, p := range o.Fetched {
		fetched[filepath.Clean(p)] = true
	}

	rows := make([]db.RunGranule, 0, len(o.Plan.Items))
	for _, it := range o.Plan.Items {
		row := db.RunGranule{
			Filename: it.Filename,
			Decision: string(it.Decision),
		}
		if link, ok := it.Granule.FirstLink(); ok {
			row.URL = link
		}
		if it.Granule.Size.Known() {
			mb := it.Granule.Size.MB
			row.RemoteMB = &mb
		}
		if it.Local.Exists {
			mb := it.Local.SizeMB()
			row.LocalMB = &mb
		}
		if it.Path != "" {
			row.Fetched = fetched[filepath.Clean(it.Path)]
		}
		rows = append(rows, row)
	}
	return run, rows
}
