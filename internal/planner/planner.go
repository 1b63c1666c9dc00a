// Package planner hands the written workflow to the external planner. It is
// the only part of the generator that starts a process.
package planner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lsst-dm/Daxgen/internal/ctxlog"
)

// DefaultOutputSite receives the workflow outputs unless told otherwise.
const DefaultOutputSite = "local"

// Config describes one planner invocation.
type Config struct {
	// Path is the planner executable.
	Path string
	// Workflow is the local path of the workflow document.
	Workflow string
	// SubmitDir is where the planner writes its submit files.
	SubmitDir string
	// Site is the execution site.
	Site       string
	OutputSite string
}

// Args returns the planner command line without the executable.
func (c Config) Args() []string {
	outputSite := c.OutputSite
	if outputSite == "" {
		outputSite = DefaultOutputSite
	}
	var args []string
	if c.SubmitDir != "" {
		args = append(args, "--dir", c.SubmitDir)
	}
	args = append(args, "--sites", c.Site, "--output-site", outputSite, c.Workflow)
	return args
}

// Error is a planner run that did not exit cleanly.
type Error struct {
	Path     string
	ExitCode int
	Output   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("planner %s failed", e.Path)
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("%s with exit code %d", msg, e.ExitCode)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Run invokes the planner and waits for it. Cancelling ctx kills the process.
func Run(ctx context.Context, cfg Config) error {
	logger := ctxlog.FromContext(ctx)
	if cfg.Path == "" {
		return errors.New("planner path is required")
	}
	if cfg.Workflow == "" {
		return errors.New("planner workflow path is required")
	}

	args := cfg.Args()
	logger.Info("Invoking planner.", "path", cfg.Path, "args", args)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, cfg.Path, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		perr := &Error{Path: cfg.Path, Output: out.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return perr
	}

	logger.Debug("Planner finished.", "output", strings.TrimSpace(out.String()))
	return nil
}
