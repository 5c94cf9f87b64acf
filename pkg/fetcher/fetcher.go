// Package fetcher downloads granules into a directory with a small worker pool.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/cmr"
	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// DefaultWorkers is the number of concurrent transfers when none is configured.
const DefaultWorkers = 4

// ObjectGetter opens an s3:// object for reading.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Fetcher downloads granules over HTTPS through an Earthdata session, or from S3
// when a granule's first link is an s3:// URL.
type Fetcher struct {
	session *cmr.Session
	s3      ObjectGetter
	workers int
	store   *storage.Storage
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithWorkers sets the number of concurrent transfers.
func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithS3 enables s3:// links.
func WithS3(g ObjectGetter) Option {
	return func(f *Fetcher) { f.s3 = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher using session for HTTPS transfers.
func New(session *cmr.Session, opts ...Option) *Fetcher {
	f := &Fetcher{
		session: session,
		workers: DefaultWorkers,
		store:   &storage.Storage{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type job struct {
	index   int
	granule models.Granule
}

type result struct {
	index int
	path  string
	err   error
}

// Fetch downloads every granule into dir and returns the paths obtained, in input
// order. Failed transfers are logged and left out of the result.
func (f *Fetcher) Fetch(ctx context.Context, granules []models.Granule, dir string) ([]string, error) {
	if err := f.store.EnsureDir(dir); err != nil {
		return nil, err
	}
	if len(granules) == 0 {
		return nil, nil
	}

	var wg sync.WaitGroup
	jobs := make(chan job, len(granules))
	results := make(chan result, len(granules))

	workers := f.workers
	if workers > len(granules) {
		workers = len(granules)
	}
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go f.worker(ctx, w, dir, &wg, jobs, results)
	}

	for i, g := range granules {
		jobs <- job{index: i, granule: g}
	}
	close(jobs)

	wg.Wait()
	close(results)

	paths := make([]string, len(granules))
	for r := range results {
		if r.err != nil {
			f.logger.Error("Download failed", "granule", granules[r.index].Name, "error", r.err)
			continue
		}
		paths[r.index] = r.path
	}

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *Fetcher) worker(ctx context.Context, id int, dir string, wg *sync.WaitGroup, jobs <-chan job, results chan<- result) {
	defer wg.Done()
	for j := range jobs {
		link, ok := j.granule.FirstLink()
		if !ok {
			results <- result{index: j.index, err: fmt.Errorf("%s: %w", j.granule.Name, models.ErrNoDataLinks)}
			continue
		}
		dest := filepath.Join(dir, models.FilenameFromURL(link))
		f.logger.Info("Worker fetching granule", "worker_id", id, "url", link)

		var err error
		if strings.HasPrefix(link, "s3://") {
			err = f.fetchS3(ctx, link, dest)
		} else {
			err = f.fetchHTTP(ctx, link, dest)
		}
		results <- result{index: j.index, path: dest, err: err}
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, link, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.session.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s, status code: %d", link, resp.StatusCode)
	}
	return writeAtomic(dest, resp.Body)
}

func (f *Fetcher) fetchS3(ctx context.Context, link, dest string) error {
	if f.s3 == nil {
		return fmt.Errorf("s3 link %s requires direct access", link)
	}
	bucket, key, err := ParseS3URL(link)
	if err != nil {
		return err
	}
	body, err := f.s3.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()
	return writeAtomic(dest, body)
}

// writeAtomic streams r to a temporary file next to dest and renames it into place.
// A failed transfer leaves nothing under the final name.
func writeAtomic(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}
	return nil
}
