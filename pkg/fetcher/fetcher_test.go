package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/cmr"
)

func newSession(t *testing.T) *cmr.Session {
	t.Helper()
	s, err := cmr.NewSession(cmr.Credentials{Token: "tok"}, cmr.WithAuthDomain("127.0.0.1"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFetch_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/data/a.nc":
			io.WriteString(w, "granule-a")
		case "/data/b.nc":
			io.WriteString(w, "granule-b")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "downloads")
	granules := []models.Granule{
		{Name: "a", DataLinks: []string{srv.URL + "/data/a.nc"}},
		{Name: "missing", DataLinks: []string{srv.URL + "/data/missing.nc"}},
		{Name: "b", DataLinks: []string{srv.URL + "/data/b.nc"}},
		{Name: "linkless"},
	}

	paths, err := New(newSession(t), WithWorkers(2)).Fetch(context.Background(), granules, dir)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.nc"), filepath.Join(dir, "b.nc")}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("Fetch() = %v, want %v", paths, want)
	}

	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "granule-b" {
		t.Errorf("b.nc = %q", data)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".part-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.nc")); !os.IsNotExist(err) {
		t.Error("failed download left a file under its final name")
	}
}

func TestFetch_Empty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new")
	paths, err := New(newSession(t)).Fetch(context.Background(), nil, dir)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Fetch() = %v, want empty", paths)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("dir not created: %v", err)
	}
}

type fakeObjects map[string]string

func (f fakeObjects) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	body, ok := f[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestFetch_S3(t *testing.T) {
	dir := t.TempDir()
	objects := fakeObjects{"podaac-swot/SWOT_L2_HR_PIXC_2.0/c.nc": "granule-c"}
	granules := []models.Granule{
		{Name: "c", DataLinks: []string{"s3://podaac-swot/SWOT_L2_HR_PIXC_2.0/c.nc"}},
		{Name: "d", DataLinks: []string{"s3://podaac-swot/SWOT_L2_HR_PIXC_2.0/d.nc"}},
	}

	paths, err := New(newSession(t), WithS3(objects)).Fetch(context.Background(), granules, dir)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "c.nc" {
		t.Fatalf("Fetch() = %v, want [c.nc]", paths)
	}

	// Without an S3 source, s3 links are dropped rather than failing the batch.
	paths, err = New(newSession(t)).Fetch(context.Background(), granules[:1], t.TempDir())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Fetch() without s3 = %v, want empty", paths)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		url     string
		bucket  string
		key     string
		wantErr bool
	}{
		{url: "s3://bucket/path/to/a.nc", bucket: "bucket", key: "path/to/a.nc"},
		{url: "s3://bucket", wantErr: true},
		{url: "s3:///key", wantErr: true},
		{url: "https://bucket/key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			bucket, key, err := ParseS3URL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseS3URL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || key != tt.key {
				t.Errorf("ParseS3URL() = (%q, %q), want (%q, %q)", bucket, key, tt.bucket, tt.key)
			}
		})
	}
}

func TestS3Source(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/s3credentials":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			io.WriteString(w, `{"accessKeyId":"AK","secretAccessKey":"SK","sessionToken":"ST","expiration":"2030-01-01 00:00:00+00:00"}`)
		case r.URL.Path == "/podaac-swot/dir/e.nc":
			w.Header().Set("Content-Length", "9")
			io.WriteString(w, "granule-e")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewS3Source(context.Background(), newSession(t), S3Config{
		CredentialsURL: srv.URL + "/s3credentials",
		Endpoint:       srv.URL,
	})
	if err != nil {
		t.Fatalf("NewS3Source() error = %v", err)
	}

	body, err := src.GetObject(context.Background(), "podaac-swot", "dir/e.nc")
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "granule-e" {
		t.Errorf("GetObject() body = %q", data)
	}
}

func TestNewS3Source_RejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewS3Source(context.Background(), newSession(t), S3Config{CredentialsURL: srv.URL}); err == nil {
		t.Error("NewS3Source() error = nil, want credentials failure")
	}
}
