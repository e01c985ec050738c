package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/subgraphdumper/internal/app"
	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("subgraphdumper", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
SubgraphDumper - extracts and deduplicates reusable subgraphs from model graphs.

Usage:
  subgraphdumper [options] [INPUT_DIR...]

Arguments:
  INPUT_DIR
    Directory scanned recursively for model files.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Comma-separated list of input directories.")
	iFlag := flagSet.String("i", "", "Comma-separated list of input directories (shorthand).")
	outputFlag := flagSet.String("output", "output", "Directory for serialized subgraphs and status lists.")
	patternsFlag := flagSet.String("patterns", "", "Comma-separated glob patterns selecting model files. Default '**.hcl'.")
	extractorsFlag := flagSet.String("extractors", "", "Comma-separated extractor names. Default: all bundled extractors.")
	extractBodyFlag := flagSet.Bool("extract-body", true, "Also extract subgraphs from the bodies of composite operators.")
	thresholdFlag := flagSet.Int64("const-threshold", subgraph.DefaultConstByteThreshold, "Largest constant in bytes kept as a literal.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	inputs := splitList(*inputFlag)
	inputs = append(inputs, splitList(*iFlag)...)
	inputs = append(inputs, flagSet.Args()...)
	slog.Debug("Input directories determined.", "inputs", inputs)

	if len(inputs) == 0 {
		slog.Debug("No input directory provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		InputDirs:       inputs,
		OutputDir:       *outputFlag,
		Patterns:        splitList(*patternsFlag),
		Extractors:      splitList(*extractorsFlag),
		ExtractBody:     *extractBodyFlag,
		ConstThreshold:  *thresholdFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
