package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/Gismakerr/DaChuang/internal/common"
	"github.com/Gismakerr/DaChuang/internal/download"
	"github.com/Gismakerr/DaChuang/internal/files"
	"github.com/Gismakerr/DaChuang/internal/runs"
	"github.com/Gismakerr/DaChuang/internal/search"
	"github.com/Gismakerr/DaChuang/pkg/db"
	"github.com/Gismakerr/DaChuang/pkg/walker"
)

func main() {
	// Credentials may live in .env; a missing file is fine.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	formatFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text, json or yaml"}
	}
	dbFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "db", Value: db.DefaultDBName, Usage: "run ledger path"}
	}

	return &cli.App{
		Name:  "swot",
		Usage: "search, download and tidy SWOT hydrology granules",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "search the catalog and report matches with a size estimate",
				Flags:  append(common.SearchFlags(), formatFlag()),
				Action: search.SearchAction,
			},
			{
				Name:   "download",
				Usage:  "search, then fetch what is missing or mismatched in --dir",
				Flags:  common.DownloadFlags(),
				Action: download.DownloadAction,
			},
			{
				Name:  "unzip",
				Usage: "extract every .zip in --source into --target",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Required: true, Usage: "directory holding the archives"},
					&cli.StringFlag{Name: "target", Required: true, Usage: "directory to extract into"},
				},
				Action: files.UnzipAction,
			},
			{
				Name:  "prune",
				Usage: "delete shapefiles without features, sidecars included",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Required: true, Usage: "directory holding the shapefiles"},
				},
				Action: files.PruneAction,
			},
			{
				Name:  "split",
				Usage: "write one shapefile per feature",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Required: true, Usage: "shapefile to split"},
					&cli.StringFlag{Name: "output", Required: true, Usage: "output directory"},
					&cli.StringFlag{Name: "id-field", Usage: "attribute naming each output file"},
				},
				Action: files.SplitAction,
			},
			{
				Name:  "subfolders",
				Usage: "list subdirectories as absolute paths",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "root", Value: ".", Usage: "directory to walk"},
					&cli.IntFlag{Name: "depth", Value: walker.Unbounded, Usage: "levels to descend, negative for no limit"},
				},
				Action: files.SubfoldersAction,
			},
			{
				Name:   "products",
				Usage:  "list known SWOT collections and their usual granule patterns",
				Flags:  []cli.Flag{formatFlag()},
				Action: search.ProductsAction,
			},
			{
				Name:  "runs",
				Usage: "list recorded download runs",
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to show, 0 for all"},
				},
				Action: runs.RunsAction,
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "show per-granule decisions of a run (latest by default)",
						ArgsUsage: "[run-id]",
						Flags:     []cli.Flag{dbFlag()},
						Action:    runs.RunShowAction,
					},
				},
			},
		},
	}
}
