package app

import (
	"io"
	"log/slog"

	"github.com/lsst-dm/Daxgen/internal/serialize"
	"github.com/viant/afs"
)

// Version is reported in traces. Release builds override it with -ldflags.
var Version = "dev"

// App encapsulates the generator's dependencies and configuration.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	fs        afs.Service
	artifacts *serialize.Artifacts
}

// NewApp is the constructor for the application. Each App owns its logger,
// writing to outW.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		fs:     afs.New(),
	}
}

// WithFS replaces the file service used for catalogs and artifacts.
func (a *App) WithFS(fs afs.Service) *App {
	a.fs = fs
	return a
}

// Artifacts returns what the last successful run wrote. This is primarily for
// testing.
func (a *App) Artifacts() *serialize.Artifacts {
	return a.artifacts
}
