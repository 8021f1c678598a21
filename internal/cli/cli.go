// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/metafeatgo/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("metafeatgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
metafeatgo - compute dataset metafeatures for meta-learning pipelines.

Usage:
  metafeatgo [options] CSV_PATH

Arguments:
  CSV_PATH
    Path to a CSV file with a header row.

Options:
`)
		flagSet.PrintDefaults()
	}

	targetFlag := flagSet.String("target", "", "Name of the target column. Empty means no target.")
	metafeaturesFlag := flagSet.String("metafeatures", "", "Comma-separated metafeature ids to compute. Empty means all.")
	seedFlag := flagSet.Int64("seed", 0, "Base seed for sampling. Omit to draw one randomly.")
	foldsFlag := flagSet.Int("folds", 2, "Cross-validation fold count for the landmarking metafeatures.")
	sampleRowsFlag := flagSet.Int("sample-rows", 0, "Row bound for sampling. 0 is unbounded.")
	sampleColsFlag := flagSet.Int("sample-cols", 0, "Column bound for sampling. 0 is unbounded.")
	listFlag := flagSet.String("list", "", "List metafeature ids in a group and exit. Options: 'all', 'landmarking', 'target_dependent'.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

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

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" && *listFlag == "" {
		slog.Debug("No CSV path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	var ids []string
	if *metafeaturesFlag != "" {
		for _, id := range strings.Split(*metafeaturesFlag, ",") {
			ids = append(ids, strings.TrimSpace(id))
		}
	}
	var seed *int64
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seed = seedFlag
		}
	})
	if seed != nil && *seed < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid seed: must be a non-negative integer"}
	}

	config, err := app.NewConfig(app.Config{
		CSVPath:        path,
		TargetColumn:   *targetFlag,
		MetafeatureIDs: ids,
		Seed:           seed,
		Folds:          *foldsFlag,
		SampleRows:     *sampleRowsFlag,
		SampleCols:     *sampleColsFlag,
		ListGroup:      *listFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
