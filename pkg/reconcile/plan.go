// Package reconcile decides which granules must be downloaded into a local directory
// and drives a single batch fetch for them.
package reconcile

import (
	"math"
	"path/filepath"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// ToleranceMB is the largest local/remote size difference still treated as a match.
// The comparison is strict: a difference of exactly ToleranceMB is a mismatch.
const ToleranceMB = 1.0

// Decision is the classification of one granule against local disk state.
type Decision string

const (
	DecisionSkip    Decision = "skip"    // present with a matching size
	DecisionRefetch Decision = "refetch" // present with a mismatched size: purge then fetch
	DecisionFetch   Decision = "fetch"   // absent, or remote size unknown
	DecisionInvalid Decision = "invalid" // no data link to derive a filename from
)

// LocalFile is what the reconciler knows about the file at a granule's local path.
type LocalFile struct {
	Exists    bool
	SizeBytes int64
}

// SizeMB returns the local size in megabytes.
func (l LocalFile) SizeMB() float64 {
	return float64(l.SizeBytes) / storage.BytesPerMB
}

// StatFunc reports local state for path. Any stat failure means "not present".
type StatFunc func(path string) LocalFile

// DiskStat reads local state from the filesystem.
func DiskStat(s *storage.Storage) StatFunc {
	return func(path string) LocalFile {
		if !s.HasFile(path) {
			return LocalFile{}
		}
		stats, err := s.GetFileStats(path)
		if err != nil {
			return LocalFile{}
		}
		return LocalFile{Exists: true, SizeBytes: stats.SizeBytes}
	}
}

// Item is one classified granule.
type Item struct {
	Granule  models.Granule
	Filename string
	Path     string
	Local    LocalFile
	Decision Decision
}

// Plan is the classification of a granule list, in input order.
type Plan struct {
	Items []Item
}

// LocalPath is the deterministic location of filename inside dir.
func LocalPath(dir, filename string) string {
	return filepath.Join(dir, filename)
}

// Classify compares a remote size against local state.
// An unknown remote size never matches, so the file is fetched again.
func Classify(remote models.Size, local LocalFile) Decision {
	if !local.Exists || !remote.Known() {
		return DecisionFetch
	}
	if math.Abs(local.SizeMB()-remote.MB) < ToleranceMB {
		return DecisionSkip
	}
	return DecisionRefetch
}

// NewPlan classifies every granule. It does no I/O beyond calling stat.
func NewPlan(granules []models.Granule, dir string, stat StatFunc) Plan {
	items := make([]Item, 0, len(granules))
	for _, g := range granules {
		item := Item{Granule: g, Filename: g.Filename()}
		if item.Filename == "" {
			item.Decision = DecisionInvalid
			items = append(items, item)
			continue
		}
		item.Path = LocalPath(dir, item.Filename)
		item.Local = stat(item.Path)
		item.Decision = Classify(g.Size, item.Local)
		items = append(items, item)
	}
	return Plan{Items: items}
}

// Count returns how many items carry decision d.
func (p Plan) Count(d Decision) int {
	n := 0
	for _, it := range p.Items {
		if it.Decision == d {
			n++
		}
	}
	return n
}

// ToFetch returns the granules selected for download, in input order.
func (p Plan) ToFetch() []models.Granule {
	out := make([]models.Granule, 0, len(p.Items))
	for _, it := range p.Items {
		if it.Decision == DecisionFetch || it.Decision == DecisionRefetch {
			out = append(out, it.Granule)
		}
	}
	return out
}
