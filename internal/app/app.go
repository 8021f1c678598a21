// Package app wires the CLI configuration to the metafeature library: it
// loads the dataset, runs the compute call, and renders the JSON report.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/vk/metafeatgo/internal/ctxlog"
	"github.com/vk/metafeatgo/pkg/dataset"
	"github.com/vk/metafeatgo/pkg/metafeatures"
)

// App encapsulates the application's dependencies, configuration and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// New is the constructor for the main application. Logs go to stderr so the
// report on stdout stays machine-readable.
func New(outW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, os.Stderr)
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, logger: logger, config: config}
}

// Run executes the configured action: listing a metafeature group or
// computing metafeatures of the configured dataset.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if a.config.ListGroup != "" {
		return a.list()
	}
	return a.compute(ctx)
}

func (a *App) list() error {
	ids, err := metafeatures.List(metafeatures.Group(a.config.ListGroup))
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(a.outW, id)
	}
	return nil
}

func (a *App) compute(ctx context.Context) error {
	features, target, err := loadCSV(a.config.CSVPath, a.config.TargetColumn)
	if err != nil {
		return err
	}
	a.logger.Debug("Dataset loaded.",
		"path", a.config.CSVPath,
		"rows", features.NumRows(),
		"cols", features.NumCols(),
		"target", a.config.TargetColumn,
	)

	req := metafeatures.ComputeRequest{
		Features:       features,
		Target:         target,
		MetafeatureIDs: a.config.MetafeatureIDs,
		Seed:           a.config.Seed,
		Folds:          a.config.Folds,
	}
	if a.config.SampleRows > 0 || a.config.SampleCols > 0 {
		req.SampleShape = &dataset.SampleShape{
			Rows: a.config.SampleRows,
			Cols: a.config.SampleCols,
		}
	}

	result, err := metafeatures.Compute(ctx, req)
	if err != nil {
		return err
	}
	a.logger.Debug("Metafeatures computed.",
		"count", len(result.Metafeatures), "seed", result.Seed)

	return a.report(result)
}

// reportEntry is the JSON shape of one computed metafeature or requested
// resource.
type reportEntry struct {
	Value       any      `json:"value"`
	ComputeTime *float64 `json:"compute_time"`
	Reason      string   `json:"reason,omitempty"`
}

type report struct {
	Seed         int64                  `json:"seed"`
	Metafeatures map[string]reportEntry `json:"metafeatures"`
}

// renderValue prepares a resolved value for the JSON report. NaN renders as
// null since JSON has no NaN, and requested intermediates backed by dataset
// containers render as a short description; marshalling them directly would
// yield an empty object because their fields are unexported.
func renderValue(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return nil
		}
		return val
	case *dataset.Table:
		if val == nil {
			return nil
		}
		return fmt.Sprintf("table (%d rows x %d cols)", val.NumRows(), val.NumCols())
	case *dataset.Series:
		if val == nil {
			return nil
		}
		return fmt.Sprintf("series %q (%d values)", val.Name, val.Len())
	default:
		return val
	}
}

func (a *App) report(result *metafeatures.ComputeResult) error {
	out := report{
		Seed:         result.Seed,
		Metafeatures: make(map[string]reportEntry, len(result.Metafeatures)),
	}
	for id, mf := range result.Metafeatures {
		entry := reportEntry{Value: renderValue(mf.Value), Reason: mf.Reason}
		if mf.Sentinel == "" && !math.IsNaN(mf.ComputeTime) {
			seconds := mf.ComputeTime
			entry.ComputeTime = &seconds
		}
		out.Metafeatures[id] = entry
	}

	encoder := json.NewEncoder(a.outW)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
