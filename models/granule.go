package models

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNoDataLinks is returned for a granule without any retrieval URL.
var ErrNoDataLinks = errors.New("granule has no data links")

// SizeStatus says whether a granule's remote size could be determined.
type SizeStatus int

const (
	// SizeAbsent means the catalog entry carries no size information at all.
	SizeAbsent SizeStatus = iota
	SizeKnown             // MB holds the remote size
	SizeUnreadable        // size fields exist but could not be interpreted
)

func (s SizeStatus) String() string {
	switch s {
	case SizeKnown:
		return "known"
	case SizeUnreadable:
		return "unreadable"
	default:
		return "absent"
	}
}

// Size is the remote size of a granule in megabytes (MiB, 1024*1024 bytes).
type Size struct {
	MB     float64
	Status SizeStatus
	Err    error // set when Status is SizeUnreadable
}

// KnownSize returns a Size holding mb.
func KnownSize(mb float64) Size {
	return Size{MB: mb, Status: SizeKnown}
}

// UnreadableSize records why a size could not be read.
func UnreadableSize(err error) Size {
	return Size{Status: SizeUnreadable, Err: err}
}

// Known reports whether MB is meaningful.
func (s Size) Known() bool {
	return s.Status == SizeKnown
}

// Granule is one remote data product instance returned by a catalog search.
type Granule struct {
	ID        string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string   `json:"name" yaml:"name"`
	DataLinks []string `json:"data_links" yaml:"data_links"`
	Size      Size     `json:"-" yaml:"-"`
}

// FirstLink returns the retrieval URL used for download.
func (g Granule) FirstLink() (string, bool) {
	if len(g.DataLinks) == 0 {
		return "", false
	}
	return g.DataLinks[0], true
}

// Filename is the local filename the granule is stored under, derived from its first data link.
// Empty when the granule has no links.
func (g Granule) Filename() string {
	link, ok := g.FirstLink()
	if !ok {
		return ""
	}
	return FilenameFromURL(link)
}

// FilenameFromURL returns the final path segment of rawURL.
// Query strings and fragments are not part of the name.
func FilenameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p := strings.TrimRight(u.Path, "/")
		return p[strings.LastIndex(p, "/")+1:]
	}
	trimmed := strings.TrimRight(rawURL, "/")
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}
