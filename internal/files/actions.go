package files

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Gismakerr/DaChuang/internal/common"
	"github.com/Gismakerr/DaChuang/pkg/archive"
	"github.com/Gismakerr/DaChuang/pkg/shapefile"
	"github.com/Gismakerr/DaChuang/pkg/walker"
)

func UnzipAction(c *cli.Context) error {
	target := c.String("target")
	done, err := archive.Expand(c.String("source"), target)
	for _, src := range done {
		fmt.Printf("已解压: %s 到 %s\n", src, target)
	}
	return err
}

func PruneAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	report, err := shapefile.PruneEmpty(c.String("folder"), logger)
	if report != nil {
		for _, name := range report.Unreadable {
			fmt.Printf("无法读取 %s，跳过。\n", name)
		}
		fmt.Printf("已删除空 shapefile 数量：%d\n", len(report.Deleted))
		if len(report.Deleted) > 0 {
			fmt.Printf("已删除文件：%s\n", strings.Join(report.Deleted, ", "))
		}
	}
	return err
}

func SplitAction(c *cli.Context) error {
	outputs, err := shapefile.Split(c.String("input"), c.String("output"), c.String("id-field"))
	if err != nil {
		return err
	}
	fmt.Printf("✅ 导出完成，共导出 %d 个文件。\n", len(outputs))
	return nil
}

func SubfoldersAction(c *cli.Context) error {
	dirs, err := walker.ListSubfolders(c.String("root"), c.Int("depth"))
	if err != nil {
		return err
	}
	for _, d := range dirs {
		fmt.Fprintln(os.Stdout, d)
	}
	return nil
}
