package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lsst-dm/Daxgen/internal/app"
	"github.com/lsst-dm/Daxgen/internal/builder"
	"github.com/lsst-dm/Daxgen/internal/planner"
	"github.com/lsst-dm/Daxgen/internal/serialize"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("daxgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
daxgen - generates an abstract workflow and task descriptors from a pipeline.

Usage:
  daxgen [options] PIPELINE_PATH

Arguments:
  PIPELINE_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	tcFlag := flagSet.String("tc", "", "Transformation catalog (YAML). Required.")
	sitesFlag := flagSet.String("sites", "", "Site catalog (YAML). When set, -site must be listed in it.")
	siteFlag := flagSet.String("site", builder.DefaultSite, "Execution site the stages are bound on.")
	outputFlag := flagSet.String("output-dir", ".", "Directory or URL the artifacts are written to.")
	submitFlag := flagSet.String("submit-dir", "", "Submit directory handed to the planner.")
	outputSiteFlag := flagSet.String("output-site", planner.DefaultOutputSite, "Site the planner stages workflow outputs to.")
	nameFlag := flagSet.String("name", "", "Workflow name. Defaults to the pipeline's workflow label.")
	formatFlag := flagSet.String("format", string(serialize.FormatDAX), "Workflow document format. Options: 'dax' or 'yaml'.")
	descFlag := flagSet.String("descriptor-format", string(serialize.DescriptorJSON), "Task descriptor format. Options: 'json' or 'hcl'.")
	wrapperFlag := flagSet.String("wrapper", "", "Run every job through this transformation, passing its descriptor.")
	graphFlag := flagSet.Bool("graph", false, "Also write the node-link graph export.")
	planFlag := flagSet.String("plan", "", "Planner executable to invoke after the artifacts are written.")
	traceFlag := flagSet.String("trace-file", "", "Write phase traces to this file ('-' for stdout).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, false, usageError("missing PIPELINE_PATH")
	}
	if flagSet.NArg() > 1 {
		return nil, false, usageError("expected one PIPELINE_PATH, got %d arguments", flagSet.NArg())
	}
	path := flagSet.Arg(0)
	slog.Debug("Pipeline path determined.", "path", path)

	if *tcFlag == "" {
		return nil, false, usageError("missing -tc: a transformation catalog is required")
	}

	format, err := serialize.ParseFormat(strings.ToLower(*formatFlag))
	if err != nil {
		return nil, false, usageError("invalid format: %v", err)
	}
	descFormat, err := serialize.ParseDescriptorFormat(strings.ToLower(*descFlag))
	if err != nil {
		return nil, false, usageError("invalid descriptor-format: %v", err)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PipelinePath:          path,
		TransformationCatalog: *tcFlag,
		SiteCatalog:           *sitesFlag,
		Site:                  *siteFlag,
		OutputDir:             *outputFlag,
		SubmitDir:             *submitFlag,
		OutputSite:            *outputSiteFlag,
		Name:                  *nameFlag,
		Format:                format,
		DescriptorFormat:      descFormat,
		Wrapper:               *wrapperFlag,
		NodeLink:              *graphFlag,
		PlannerPath:           *planFlag,
		TraceFile:             *traceFlag,
		LogFormat:             logFormat,
		LogLevel:              logLevel,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
