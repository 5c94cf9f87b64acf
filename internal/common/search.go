package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/cmr"
	"github.com/Gismakerr/DaChuang/pkg/listing"
	"github.com/Gismakerr/DaChuang/pkg/shapefile"
)

// Searcher is a granule catalog.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) ([]models.Granule, error)
}

// NewSearcher returns the mirror listing when cfg names one, else a CMR client.
func NewSearcher(cfg *models.RunConfig, cmrURL string, session *cmr.Session, logger *slog.Logger) (Searcher, error) {
	if cfg.MirrorURL != "" {
		return listing.New(cfg.MirrorURL, session), nil
	}
	access, err := cmr.ParseAccess(cfg.Access)
	if err != nil {
		return nil, err
	}
	opts := []cmr.Option{cmr.WithAccess(access)}
	if logger != nil {
		opts = append(opts, cmr.WithLogger(logger))
	}
	if cmrURL != "" {
		opts = append(opts, cmr.WithBaseURL(cmrURL))
	}
	return cmr.NewClient(session, opts...), nil
}

// BuildQuery turns cfg into a query, deriving the bounding box from the shapefile when one is set.
func BuildQuery(cfg *models.RunConfig, out io.Writer) (models.SearchQuery, error) {
	q, err := models.NewSearchQuery(cfg.ShortName, cfg.StartDate, cfg.EndDate)
	if err != nil {
		return q, err
	}
	q.NamePattern = cfg.Pattern
	if err := q.Validate(); err != nil {
		return q, err
	}

	if cfg.Shapefile == "" {
		fmt.Fprintln(out, "📍 No shapefile provided. Skipping spatial filter.")
		return q, nil
	}
	fmt.Fprintf(out, "📍 Using shapefile for spatial filter: %s\n", cfg.Shapefile)
	box, err := shapefile.Bounds(cfg.Shapefile)
	if err != nil {
		return q, fmt.Errorf("failed to read shapefile extent: %w", err)
	}
	fmt.Fprintf(out, "🗺️  Bounding box: %s\n", box)
	q.BBox = &box
	return q, nil
}

// RunSearch issues q and prints the match count and size estimate.
func RunSearch(ctx context.Context, s Searcher, q models.SearchQuery, out io.Writer, logger *slog.Logger) ([]models.Granule, models.SearchSummary, error) {
	fmt.Fprintf(out, "🔍 Searching data from %s to %s...\n", q.Start.Format(models.DateLayout), q.End.Format(models.DateLayout))
	granules, err := s.Search(ctx, q)
	if err != nil {
		return nil, models.SearchSummary{}, fmt.Errorf("search failed: %w", err)
	}

	for _, g := range granules {
		if g.Size.Status == models.SizeUnreadable {
			logger.Warn("Granule size unreadable, left out of estimate", "granule", g.Name, "error", g.Size.Err)
		}
	}
	summary := models.Summarize(granules)
	fmt.Fprintf(out, "✅ Found %d matching files.\n", summary.Count)
	fmt.Fprintf(out, "📦 Estimated total size: %.2f MB\n", summary.TotalMB)
	return granules, summary, nil
}
