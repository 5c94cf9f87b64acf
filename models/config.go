// Package models defines data structures shared by the search, download and file commands.
package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RunConfig holds the settings of a search-and-download run.
// Values can come from a YAML file; CLI flags override whatever the file sets.
type RunConfig struct {
	ShortName   string `yaml:"short_name"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
	Shapefile   string `yaml:"shapefile,omitempty"`
	Pattern     string `yaml:"granule_pattern,omitempty"`
	DownloadDir string `yaml:"download_dir,omitempty"`
	Workers     int    `yaml:"workers,omitempty"`
	Access      string `yaml:"access,omitempty"` // external | direct
	MirrorURL   string `yaml:"mirror_url,omitempty"`
}

// LoadRunConfig reads a RunConfig from a YAML file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}
