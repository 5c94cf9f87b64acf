package download

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Gismakerr/DaChuang/internal/common"
	"github.com/Gismakerr/DaChuang/pkg/cmr"
	"github.com/Gismakerr/DaChuang/pkg/db"
	"github.com/Gismakerr/DaChuang/pkg/fetcher"
	"github.com/Gismakerr/DaChuang/pkg/metrics"
	"github.com/Gismakerr/DaChuang/pkg/reconcile"
)

func DownloadAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	ctx := c.Context

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DownloadDir == "" {
		return fmt.Errorf("a download directory is required (--dir or download_dir in config)")
	}

	session, err := common.NewSession(c)
	if err != nil {
		return err
	}
	if !session.Authenticated() {
		logger.Warn("No Earthdata credentials given; protected downloads will fail")
	}

	searcher, err := common.NewSearcher(cfg, c.String("cmr-url"), session, logger)
	if err != nil {
		return err
	}
	q, err := common.BuildQuery(cfg, os.Stdout)
	if err != nil {
		return err
	}
	granules, _, err := common.RunSearch(ctx, searcher, q, os.Stdout, logger)
	if err != nil {
		return err
	}

	opts := []fetcher.Option{fetcher.WithWorkers(cfg.Workers), fetcher.WithLogger(logger)}
	if access, _ := cmr.ParseAccess(cfg.Access); access == cmr.AccessDirect && cfg.MirrorURL == "" {
		src, err := fetcher.NewS3Source(ctx, session, fetcher.S3Config{Endpoint: c.String("s3-endpoint")})
		if err != nil {
			return fmt.Errorf("direct access unavailable: %w", err)
		}
		opts = append(opts, fetcher.WithS3(src))
	}

	outcome, err := reconcile.New(fetcher.New(session, opts...), logger, os.Stdout).Reconcile(ctx, granules, cfg.DownloadDir)
	if err != nil {
		return err
	}

	if !c.Bool("no-db") {
		if err := recordRun(c.String("db"), cfg.ShortName, cfg.DownloadDir, outcome); err != nil {
			logger.Warn("Failed to record run in ledger", "error", err)
		}
	}

	if path := c.String("metrics-file"); path != "" {
		if err := metrics.WriteOutcome(path, cfg.ShortName, outcome, time.Now()); err != nil {
			logger.Warn("Failed to write metrics textfile", "file", path, "error", err)
		}
	}
	return nil
}

func recordRun(path, shortName, dir string, outcome *reconcile.Outcome) error {
	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	run, rows := BuildRun(shortName, dir, outcome)
	runID, err := database.RecordRun(run, rows)
	if err != nil {
		return err
	}
	fmt.Printf("\n🧾 Run %d recorded in %s\n", runID, database.Path())
	return nil
}
