package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// Fetcher downloads a batch of granules into dir and returns the paths it obtained.
// Entries that fail are left out of the returned list.
type Fetcher interface {
	Fetch(ctx context.Context, granules []models.Granule, dir string) ([]string, error)
}

// Outcome is the result of one reconciliation run.
type Outcome struct {
	Plan    Plan
	Total   int
	Skipped int
	Removed int
	Invalid int
	Fetched []string // paths returned by the batch fetch
}

// Reconciler syncs catalog granules into a local directory.
type Reconciler struct {
	fetcher Fetcher
	store   *storage.Storage
	logger  *slog.Logger
	out     io.Writer
}

// New creates a Reconciler. Console report lines go to out; nil discards them.
func New(fetcher Fetcher, logger *slog.Logger, out io.Writer) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if out == nil {
		out = io.Discard
	}
	return &Reconciler{
		fetcher: fetcher,
		store:   &storage.Storage{},
		logger:  logger,
		out:     out,
	}
}

// Reconcile skips granules already on disk with a matching size, removes mismatched
// local copies, and fetches everything else in one batch call.
// A purged file stays absent if its re-fetch fails; replacement sizes are not checked.
func (r *Reconciler) Reconcile(ctx context.Context, granules []models.Granule, dir string) (*Outcome, error) {
	if err := r.store.EnsureDir(dir); err != nil {
		return nil, err
	}

	fmt.Fprintf(r.out, "\n⬇️ Preparing download to: %s\n", dir)

	plan := NewPlan(granules, dir, DiskStat(r.store))
	outcome := &Outcome{Plan: plan, Total: len(granules)}

	for _, it := range plan.Items {
		switch it.Decision {
		case DecisionSkip:
			fmt.Fprintf(r.out, "✅ Skipped (already downloaded): %s\n", it.Filename)
			outcome.Skipped++
		case DecisionRefetch:
			fmt.Fprintf(r.out, "⚠️ Size mismatch, removing corrupted file: %s\n", it.Filename)
			r.logger.Info("Removing mismatched local file", "file", it.Filename, "local_mb", it.Local.SizeMB(), "remote_mb", it.Granule.Size.MB)
			if err := r.store.RemoveFile(it.Path); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", it.Path, err)
			}
			outcome.Removed++
		case DecisionFetch:
			if it.Local.Exists {
				r.logger.Warn("Remote size unknown, fetching again", "file", it.Filename, "size_status", it.Granule.Size.Status.String(), "error", it.Granule.Size.Err)
			}
		case DecisionInvalid:
			r.logger.Warn("Granule has no data links, ignoring", "granule", it.Granule.Name)
			outcome.Invalid++
		}
	}

	toFetch := plan.ToFetch()
	fmt.Fprintf(r.out, "\n⬇️ Downloading %d new files...\n", len(toFetch))
	fetched, err := r.fetcher.Fetch(ctx, toFetch, dir)
	if err != nil {
		return nil, fmt.Errorf("batch fetch failed: %w", err)
	}
	outcome.Fetched = fetched

	if len(fetched) < len(toFetch) {
		r.logger.Warn("Batch fetch returned fewer files than requested", "requested", len(toFetch), "fetched", len(fetched))
	}

	r.WriteSummary(outcome)
	return outcome, nil
}

// WriteSummary prints the run counters.
func (r *Reconciler) WriteSummary(o *Outcome) {
	fmt.Fprintln(r.out, "\n📊 Summary:")
	fmt.Fprintf(r.out, "🔢 Total granules in search: %d\n", o.Total)
	fmt.Fprintf(r.out, "✅ Skipped (already downloaded): %d\n", o.Skipped)
	fmt.Fprintf(r.out, "🗑️ Removed corrupted files: %d\n", o.Removed)
	fmt.Fprintf(r.out, "⬇️ Newly downloaded: %d\n", len(o.Fetched))
}
