package search

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Gismakerr/DaChuang/internal/common"
	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/storage"
)

func SearchAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	session, err := common.NewSession(c)
	if err != nil {
		return err
	}
	searcher, err := common.NewSearcher(cfg, c.String("cmr-url"), session, logger)
	if err != nil {
		return err
	}

	format := strings.ToLower(c.String("format"))
	// Progress lines would corrupt structured output on stdout.
	var progress io.Writer = os.Stdout
	if format != "text" {
		progress = os.Stderr
	}

	q, err := common.BuildQuery(cfg, progress)
	if err != nil {
		return err
	}
	granules, summary, err := common.RunSearch(c.Context, searcher, q, progress, logger)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		PrintGranules(os.Stdout, granules)
		return nil
	case "json", "yaml":
		return WriteOutput(os.Stdout, format, BuildFinalOutput(q, summary, granules))
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// PrintGranules lists one granule per line with its human-readable size.
func PrintGranules(w io.Writer, granules []models.Granule) {
	if len(granules) == 0 {
		return
	}
	fmt.Fprintln(w)
	for i, g := range granules {
		size := "?"
		if g.Size.Known() {
			size = humanize.IBytes(uint64(g.Size.MB * storage.BytesPerMB))
		}
		fmt.Fprintf(w, "%3d. %-10s %s\n", i+1, size, g.Name)
	}
}

// WriteOutput marshals v as json or yaml.
func WriteOutput(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if format != "yaml" {
		_, err = fmt.Fprintln(w)
	}
	return err
}

func ProductsAction(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	if format == "json" || format == "yaml" {
		return WriteOutput(os.Stdout, format, models.Products)
	}

	fmt.Printf("%-26s %-18s %s\n", "Short Name", "Pattern", "Example")
	fmt.Println(strings.Repeat("-", 120))
	for _, p := range models.Products {
		pattern := p.Pattern
		if pattern == "" {
			pattern = "-"
		}
		fmt.Printf("%-26s %-18s %s\n", p.ShortName, pattern, p.Example)
	}
	return nil
}
