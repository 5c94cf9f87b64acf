package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// fakeFetcher writes a file per granule sized to the granule's remote size
// (or writeMB when set) and records each batch it receives.
type fakeFetcher struct {
	calls   [][]models.Granule
	writeMB float64
	drop    map[string]bool
	err     error
}

func (f *fakeFetcher) Fetch(_ context.Context, granules []models.Granule, dir string) ([]string, error) {
	f.calls = append(f.calls, granules)
	if f.err != nil {
		return nil, f.err
	}
	var paths []string
	for _, g := range granules {
		if f.drop[g.Filename()] {
			continue
		}
		mb := g.Size.MB
		if f.writeMB > 0 {
			mb = f.writeMB
		}
		path := filepath.Join(dir, g.Filename())
		if err := os.WriteFile(path, make([]byte, int(mb*storage.BytesPerMB)), 0644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func granule(name string, size models.Size) models.Granule {
	return models.Granule{
		Name:      name,
		DataLinks: []string{"https://archive.example.org/SWOT/" + name},
		Size:      size,
	}
}

func mbBytes(mb float64) int64 {
	return int64(mb * storage.BytesPerMB)
}

func writeMB(t *testing.T, dir, name string, mb float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, mbBytes(mb)), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		remote models.Size
		local  LocalFile
		want   Decision
	}{
		{
			name:   "absent locally",
			remote: models.KnownSize(10),
			local:  LocalFile{},
			want:   DecisionFetch,
		},
		{
			name:   "difference 0.4 MB",
			remote: models.KnownSize(10),
			local:  LocalFile{Exists: true, SizeBytes: mbBytes(10.4)},
			want:   DecisionSkip,
		},
		{
			name:   "difference 0.999 MB",
			remote: models.KnownSize(10.999),
			local:  LocalFile{Exists: true, SizeBytes: 10 * storage.BytesPerMB},
			want:   DecisionSkip,
		},
		{
			name:   "difference exactly 1.0 MB",
			remote: models.KnownSize(10),
			local:  LocalFile{Exists: true, SizeBytes: 11 * storage.BytesPerMB},
			want:   DecisionRefetch,
		},
		{
			name:   "local smaller by 2 MB",
			remote: models.KnownSize(12),
			local:  LocalFile{Exists: true, SizeBytes: 10 * storage.BytesPerMB},
			want:   DecisionRefetch,
		},
		{
			name:   "remote size unreadable",
			remote: models.UnreadableSize(errors.New("bad unit")),
			local:  LocalFile{Exists: true, SizeBytes: 10 * storage.BytesPerMB},
			want:   DecisionFetch,
		},
		{
			name:   "remote size absent",
			remote: models.Size{},
			local:  LocalFile{Exists: true, SizeBytes: 10 * storage.BytesPerMB},
			want:   DecisionFetch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.remote, tt.local); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewPlan_Partition(t *testing.T) {
	sizes := []models.Size{
		models.KnownSize(5),
		models.KnownSize(20),
		models.UnreadableSize(errors.New("x")),
		{},
	}
	locals := []LocalFile{
		{},
		{Exists: true, SizeBytes: 5 * storage.BytesPerMB},
		{Exists: true, SizeBytes: 9 * storage.BytesPerMB},
	}

	var granules []models.Granule
	state := map[string]LocalFile{}
	i := 0
	for _, s := range sizes {
		for _, l := range locals {
			name := string(rune('a'+i)) + ".nc"
			granules = append(granules, granule(name, s))
			state[LocalPath("/data", name)] = l
			i++
		}
	}

	plan := NewPlan(granules, "/data", func(path string) LocalFile { return state[path] })

	if len(plan.Items) != len(granules) {
		t.Fatalf("plan has %d items, want %d", len(plan.Items), len(granules))
	}
	skip := plan.Count(DecisionSkip)
	refetch := plan.Count(DecisionRefetch)
	fetch := plan.Count(DecisionFetch)
	if skip+refetch+fetch != len(granules) {
		t.Errorf("skip(%d)+refetch(%d)+fetch(%d) != %d", skip, refetch, fetch, len(granules))
	}
	if got := len(plan.ToFetch()); got != refetch+fetch {
		t.Errorf("ToFetch() len = %d, want %d", got, refetch+fetch)
	}
	for idx, it := range plan.Items {
		if it.Granule.Name != granules[idx].Name {
			t.Errorf("item %d = %s, want input order %s", idx, it.Granule.Name, granules[idx].Name)
		}
	}
	// Only (known 5MB, local 5MB) matches.
	if skip != 1 {
		t.Errorf("skip = %d, want 1", skip)
	}
}

func TestNewPlan_InvalidGranule(t *testing.T) {
	plan := NewPlan([]models.Granule{{Name: "no-links"}}, "/data", func(string) LocalFile { return LocalFile{} })
	if plan.Items[0].Decision != DecisionInvalid {
		t.Errorf("Decision = %v, want %v", plan.Items[0].Decision, DecisionInvalid)
	}
	if len(plan.ToFetch()) != 0 {
		t.Error("invalid granule selected for fetch")
	}
}

func TestReconcile_SkipWithinTolerance(t *testing.T) {
	dir := t.TempDir()
	writeMB(t, dir, "A.nc", 10.4)

	f := &fakeFetcher{}
	out, err := New(f, nil, nil).Reconcile(context.Background(), []models.Granule{granule("A.nc", models.KnownSize(10))}, dir)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if out.Skipped != 1 || out.Removed != 0 || len(out.Fetched) != 0 {
		t.Errorf("skipped=%d removed=%d fetched=%d, want 1/0/0", out.Skipped, out.Removed, len(out.Fetched))
	}
	if len(f.calls) != 1 || len(f.calls[0]) != 0 {
		t.Errorf("fetch calls = %v, want exactly one empty batch", f.calls)
	}
}

func TestReconcile_SizeMismatchPurges(t *testing.T) {
	dir := t.TempDir()
	path := writeMB(t, dir, "A.nc", 10.4)

	f := &fakeFetcher{err: errors.New("network down")}
	_, err := New(f, nil, nil).Reconcile(context.Background(), []models.Granule{granule("A.nc", models.KnownSize(12))}, dir)
	if err == nil {
		t.Fatal("Reconcile() error = nil, want fetch error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("mismatched local file was not removed before fetch")
	}
	if len(f.calls) != 1 || f.calls[0][0].Name != "A.nc" {
		t.Errorf("fetch batch = %v, want [A.nc]", f.calls)
	}
}

func TestReconcile_Counts(t *testing.T) {
	dir := t.TempDir()
	writeMB(t, dir, "keep.nc", 3)
	writeMB(t, dir, "bad.nc", 1)
	writeMB(t, dir, "unknown.nc", 2)

	granules := []models.Granule{
		granule("keep.nc", models.KnownSize(3)),
		granule("bad.nc", models.KnownSize(4)),
		granule("unknown.nc", models.UnreadableSize(errors.New("no size"))),
		granule("new.nc", models.KnownSize(2)),
		{Name: "linkless"},
	}

	f := &fakeFetcher{}
	out, err := New(f, nil, nil).Reconcile(context.Background(), granules, dir)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if out.Total != 5 {
		t.Errorf("Total = %d, want 5", out.Total)
	}
	if out.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", out.Skipped)
	}
	if out.Removed != 1 {
		t.Errorf("Removed = %d, want 1", out.Removed)
	}
	if out.Invalid != 1 {
		t.Errorf("Invalid = %d, want 1", out.Invalid)
	}
	if len(out.Fetched) != 3 {
		t.Errorf("Fetched = %d, want 3", len(out.Fetched))
	}
	if len(f.calls) != 1 {
		t.Errorf("fetch called %d times, want 1", len(f.calls))
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	granules := []models.Granule{
		granule("a.nc", models.KnownSize(2)),
		granule("b.nc", models.KnownSize(3)),
	}

	r := New(&fakeFetcher{}, nil, nil)
	if _, err := r.Reconcile(context.Background(), granules, dir); err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	second, err := r.Reconcile(context.Background(), granules, dir)
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if second.Skipped != len(granules) {
		t.Errorf("second run Skipped = %d, want %d", second.Skipped, len(granules))
	}
}

func TestReconcile_FetchShortfallTrusted(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{drop: map[string]bool{"b.nc": true}}
	out, err := New(f, nil, nil).Reconcile(context.Background(), []models.Granule{
		granule("a.nc", models.KnownSize(1)),
		granule("b.nc", models.KnownSize(1)),
	}, dir)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(out.Fetched) != 1 {
		t.Errorf("Fetched = %d, want 1 (batch result is taken as-is)", len(out.Fetched))
	}
}

// Replacement files are not checked against the remote size. A fetch that writes
// the wrong size still counts as fetched; the next run catches it as a mismatch.
func TestReconcile_ReplacementSizeUnverified(t *testing.T) {
	dir := t.TempDir()
	writeMB(t, dir, "a.nc", 1)
	g := []models.Granule{granule("a.nc", models.KnownSize(5))}

	out, err := New(&fakeFetcher{writeMB: 2}, nil, nil).Reconcile(context.Background(), g, dir)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if out.Removed != 1 || len(out.Fetched) != 1 {
		t.Errorf("removed=%d fetched=%d, want 1/1", out.Removed, len(out.Fetched))
	}

	again, err := New(&fakeFetcher{}, nil, nil).Reconcile(context.Background(), g, dir)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if again.Removed != 1 {
		t.Errorf("second run Removed = %d, want 1", again.Removed)
	}
}

func TestReconcile_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := New(&fakeFetcher{}, nil, nil).Reconcile(context.Background(), nil, dir); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("download dir not created: %v", err)
	}
}
