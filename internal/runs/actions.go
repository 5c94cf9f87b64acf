package runs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Gismakerr/DaChuang/pkg/db"
)

func RunsAction(c *cli.Context) error {
	database, err := db.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-26s %-7s %-8s %-8s %-8s %s\n",
		"ID", "Started", "Short Name", "Total", "Skipped", "Removed", "Fetched", "Directory")
	fmt.Println(strings.Repeat("-", 120))
	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-26s %-7d %-8d %-8d %-8d %s\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.ShortName,
			r.Total,
			r.Skipped,
			r.Removed,
			r.Fetched,
			r.DownloadDir,
		)
	}
	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'swot runs show <id>' to see decisions\n")
	return nil
}

// RunShowAction lists the per-granule decisions of one run, the latest when no ID is given.
func RunShowAction(c *cli.Context) error {
	database, err := db.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := runIDOrLatest(c, database)
	if err != nil {
		return err
	}
	run, err := database.GetRun(runID)
	if err != nil {
		return err
	}
	granules, err := database.GetRunGranules(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Started:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Short Name:  %s\n", run.ShortName)
	fmt.Printf("Directory:   %s\n", run.DownloadDir)
	fmt.Printf("Granules:    %d total (%d skipped, %d removed, %d fetched)\n",
		run.Total, run.Skipped, run.Removed, run.Fetched)

	fmt.Printf("\nDecisions (%d):\n", len(granules))
	fmt.Println(strings.Repeat("-", 60))
	for i, g := range granules {
		name := g.Filename
		if name == "" {
			name = "(no data link)"
		}
		fmt.Printf("%3d. [%s] %s\n", i+1, g.Decision, name)
		fmt.Printf("     remote: %s | local: %s | fetched: %t\n", mb(g.RemoteMB), mb(g.LocalMB), g.Fetched)
	}
	return nil
}

func runIDOrLatest(c *cli.Context, database *db.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'swot download' first")
		}
		return runs[0].RunID, nil
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return id, nil
}

func mb(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f MB", *v)
}
