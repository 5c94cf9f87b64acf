// Package listing searches an HTTP directory index (Apache or nginx autoindex) for granules.
package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/cmr"
	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// swotTime matches the first acquisition timestamp in a SWOT granule name.
var swotTime = regexp.MustCompile(`_(\d{8}T\d{6})_`)

// Catalog lists one mirror directory. Spatial filters are not available on a
// plain index, so a query's bounding box is ignored.
type Catalog struct {
	indexURL string
	session  *cmr.Session
}

// New creates a Catalog for the index page at indexURL.
func New(indexURL string, session *cmr.Session) *Catalog {
	return &Catalog{indexURL: indexURL, session: session}
}

// Search returns the index entries whose names match the query's pattern and whose
// embedded acquisition time, when present, lies inside the query window.
func (c *Catalog) Search(ctx context.Context, q models.SearchQuery) ([]models.Granule, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(c.indexURL)
	if err != nil {
		return nil, fmt.Errorf("invalid index url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build index request: %w", err)
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch index, status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index HTML: %w", err)
	}

	from, to := q.Window()
	var granules []models.Granule
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if skipHref(href) {
			return
		}
		link, err := base.Parse(href)
		if err != nil {
			return
		}
		name := path.Base(link.Path)
		if seen[name] || !matches(q.NamePattern, name) || !inWindow(name, from, to) {
			return
		}
		seen[name] = true
		granules = append(granules, models.Granule{
			Name:      name,
			DataLinks: []string{link.String()},
			Size:      entrySize(s),
		})
	})
	return granules, nil
}

func skipHref(href string) bool {
	return href == "" ||
		strings.HasPrefix(href, "?") ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "../") ||
		strings.HasSuffix(href, "/")
}

func matches(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

func inWindow(name string, from, to time.Time) bool {
	m := swotTime.FindStringSubmatch(name)
	if m == nil {
		return true
	}
	ts, err := time.Parse("20060102T150405", m[1])
	if err != nil {
		return true
	}
	return !ts.Before(from) && !ts.After(to)
}

// entrySize reads the size column next to an index link. Apache puts it in a
// table cell, nginx in the text following the anchor.
func entrySize(s *goquery.Selection) models.Size {
	var candidates []string
	if row := s.Closest("tr"); row.Length() > 0 {
		row.Find("td").Each(func(_ int, td *goquery.Selection) {
			candidates = append(candidates, strings.TrimSpace(td.Text()))
		})
	} else if next := s.Nodes[0].NextSibling; next != nil && next.Type == html.TextNode {
		candidates = strings.Fields(next.Data)
	}

	for i := len(candidates) - 1; i >= 0; i-- {
		c := candidates[i]
		if c == "" || c == "-" {
			continue
		}
		bytes, err := parseSize(c)
		if err != nil {
			return models.UnreadableSize(fmt.Errorf("unparseable size %q: %w", c, err))
		}
		return models.KnownSize(float64(bytes) / storage.BytesPerMB)
	}
	return models.UnreadableSize(fmt.Errorf("no size column"))
}

// parseSize reads an index size. Autoindex pages print binary multiples with a bare
// letter ("500M" is 500 MiB), which humanize would read as decimal.
func parseSize(s string) (uint64, error) {
	if n := len(s); n > 1 && strings.ContainsRune("KMGTPE", unicode.ToUpper(rune(s[n-1]))) && unicode.IsDigit(rune(s[n-2])) {
		s += "iB"
	}
	return humanize.ParseBytes(s)
}
