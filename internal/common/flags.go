package common

import (
	"github.com/urfave/cli/v2"

	"github.com/Gismakerr/DaChuang/pkg/db"
	"github.com/Gismakerr/DaChuang/pkg/fetcher"
)

// AuthFlags carry Earthdata Login credentials.
func AuthFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Earthdata Login bearer token",
			EnvVars: []string{"EARTHDATA_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "username",
			Usage:   "Earthdata Login username",
			EnvVars: []string{"EARTHDATA_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Earthdata Login password",
			EnvVars: []string{"EARTHDATA_PASSWORD"},
		},
	}
}

// SearchFlags select granules of one product.
func SearchFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML run config; flags override its values",
		},
		&cli.StringFlag{
			Name:  "short-name",
			Usage: "collection short name, e.g. SWOT_L2_HR_RiverSP_2.0",
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "first day of the window (YYYY-MM-DD, inclusive)",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "last day of the window (YYYY-MM-DD, inclusive)",
		},
		&cli.StringFlag{
			Name:  "shapefile",
			Usage: "limit the search to the extent of this shapefile",
		},
		&cli.StringFlag{
			Name:  "pattern",
			Usage: "granule name glob, e.g. '*Node*_GR_*'",
		},
		&cli.StringFlag{
			Name:  "access",
			Value: "external",
			Usage: "data link type: external (https) or direct (s3, us-west-2 only)",
		},
		&cli.StringFlag{
			Name:  "mirror",
			Usage: "search an HTTP directory index instead of CMR",
		},
		&cli.StringFlag{
			Name:  "cmr-url",
			Value: "https://cmr.earthdata.nasa.gov/search",
			Usage: "CMR search endpoint",
		},
	}
	return append(flags, AuthFlags()...)
}

// DownloadFlags extend SearchFlags with the reconciliation settings.
func DownloadFlags() []cli.Flag {
	return append(SearchFlags(),
		&cli.StringFlag{
			Name:  "dir",
			Usage: "local download directory",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: fetcher.DefaultWorkers,
			Usage: "concurrent transfers",
		},
		&cli.StringFlag{
			Name:  "db",
			Value: db.DefaultDBName,
			Usage: "run ledger path",
		},
		&cli.BoolFlag{
			Name:  "no-db",
			Usage: "do not record the run in the ledger",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "write a Prometheus textfile with the run results",
		},
		&cli.StringFlag{
			Name:  "s3-endpoint",
			Usage: "custom S3 endpoint for direct access",
		},
	)
}
