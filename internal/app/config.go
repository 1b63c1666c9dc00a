package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lsst-dm/Daxgen/internal/builder"
	"github.com/lsst-dm/Daxgen/internal/planner"
	"github.com/lsst-dm/Daxgen/internal/serialize"
)

// Config holds everything one generator run needs.
type Config struct {
	PipelinePath          string // hcl file or directory
	TransformationCatalog string
	SiteCatalog           string
	Site                  string

	OutputDir  string // local path or afs URL
	SubmitDir  string
	OutputSite string // planner output site
	Name       string

	Format           serialize.Format
	DescriptorFormat serialize.DescriptorFormat
	Wrapper          string
	NodeLink         bool

	PlannerPath string
	TraceFile   string

	LogFormat string
	LogLevel  string
}

// NewConfig applies defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.TransformationCatalog == "" {
		return nil, errors.New("a transformation catalog is required")
	}
	if cfg.Site == "" {
		cfg.Site = builder.DefaultSite
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.OutputSite == "" {
		cfg.OutputSite = planner.DefaultOutputSite
	}
	if cfg.Format == "" {
		cfg.Format = serialize.FormatDAX
	}
	if cfg.DescriptorFormat == "" {
		cfg.DescriptorFormat = serialize.DescriptorJSON
	}

	if _, err := serialize.ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}
	if _, err := serialize.ParseDescriptorFormat(string(cfg.DescriptorFormat)); err != nil {
		return nil, err
	}
	if cfg.PlannerPath != "" && isURL(cfg.OutputDir) && !strings.HasPrefix(cfg.OutputDir, "file://") {
		return nil, fmt.Errorf("the planner needs a local output directory, got %s", cfg.OutputDir)
	}

	return &cfg, nil
}

func isURL(location string) bool {
	return strings.Contains(location, "://")
}
