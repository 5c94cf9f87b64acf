package common

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Gismakerr/DaChuang/models"
	"github.com/Gismakerr/DaChuang/pkg/cmr"
)

// NewLogger writes JSON logs to stderr; --quiet keeps only errors.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config when given and layers the command's flags over it.
// A flag wins when it was set explicitly or the file left the value empty.
func LoadConfig(c *cli.Context) (*models.RunConfig, error) {
	cfg := &models.RunConfig{}
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadRunConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	str := func(dst *string, flag string) {
		if c.IsSet(flag) || *dst == "" {
			*dst = c.String(flag)
		}
	}
	str(&cfg.ShortName, "short-name")
	str(&cfg.StartDate, "start")
	str(&cfg.EndDate, "end")
	str(&cfg.Shapefile, "shapefile")
	str(&cfg.Pattern, "pattern")
	str(&cfg.Access, "access")
	str(&cfg.MirrorURL, "mirror")
	str(&cfg.DownloadDir, "dir")
	if c.IsSet("workers") || cfg.Workers == 0 {
		cfg.Workers = c.Int("workers")
	}
	return cfg, nil
}

// NewSession builds the Earthdata session shared by search and download.
func NewSession(c *cli.Context) (*cmr.Session, error) {
	return cmr.NewSession(cmr.Credentials{
		Token:    c.String("token"),
		Username: c.String("username"),
		Password: c.String("password"),
	})
}
