// Package cmr searches NASA's Common Metadata Repository for granules.
package cmr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Gismakerr/DaChuang/models"
)

const (
	DefaultBaseURL  = "https://cmr.earthdata.nasa.gov/search"
	DefaultPageSize = 2000
	searchAfterKey  = "CMR-Search-After"
)

// Client queries the CMR granule search endpoint.
type Client struct {
	baseURL  string
	session  *Session
	pageSize int
	access   Access
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }
func WithPageSize(n int) Option { return func(c *Client) { c.pageSize = n } }
func WithAccess(a Access) Option { return func(c *Client) { c.access = a } }
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient creates a catalog client bound to session.
func NewClient(session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		session:  session,
		pageSize: DefaultPageSize,
		access:   AccessExternal,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Params builds the query string for q. Optional filters that are unset are omitted
// entirely rather than sent empty.
func Params(q models.SearchQuery, pageSize int) url.Values {
	from, to := q.Window()
	v := url.Values{}
	v.Set("short_name", q.ShortName)
	v.Set("temporal[]", from.Format(time.RFC3339)+","+to.Format(time.RFC3339))
	if q.BBox != nil {
		v.Set("bounding_box", q.BBox.String())
	}
	if q.NamePattern != "" {
		v.Set("readable_granule_name[]", q.NamePattern)
		v.Set("options[readable_granule_name][pattern]", "true")
	}
	if pageSize > 0 {
		v.Set("page_size", strconv.Itoa(pageSize))
	}
	return v
}

// Search returns every granule matching q, following CMR-Search-After paging.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) ([]models.Granule, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	endpoint := c.baseURL + "/granules.umm_json?" + Params(q, c.pageSize).Encode()

	var granules []models.Granule
	searchAfter := ""
	for page := 1; ; page++ {
		resp, next, err := c.fetchPage(ctx, endpoint, searchAfter)
		if err != nil {
			return nil, err
		}
		for _, it := range resp.Items {
			granules = append(granules, it.granule(c.access))
		}
		c.logger.Info("CMR page fetched", "page", page, "items", len(resp.Items), "hits", resp.Hits)

		if next == "" || len(resp.Items) < c.pageSize || len(granules) >= resp.Hits {
			break
		}
		searchAfter = next
	}
	return granules, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint, searchAfter string) (*searchResponse, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build CMR request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.nasa.cmr.umm_results+json")
	if searchAfter != "" {
		req.Header.Set(searchAfterKey, searchAfter)
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query CMR: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("CMR search failed, status code: %d: %s", resp.StatusCode, body)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("failed to decode CMR response: %w", err)
	}
	return &out, resp.Header.Get(searchAfterKey), nil
}
