package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CSVPath      string
	TargetColumn string

	MetafeatureIDs []string
	Seed           *int64
	Folds          int
	SampleRows     int
	SampleCols     int

	// ListGroup, when set, prints the metafeature ids of a group instead of
	// computing anything.
	ListGroup string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CSVPath == "" && cfg.ListGroup == "" {
		return nil, errors.New("CSVPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
