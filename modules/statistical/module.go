// Package statistical provides the moment-based metafeatures: the four
// aggregate statistics of each per-feature moment across the numeric
// features of the sampled table.
package statistical

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the package's producing functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("means_of_numeric_features", moment(func(v []float64) float64 {
		return stat.Mean(v, nil)
	}))
	r.RegisterFunction("stdevs_of_numeric_features", moment(func(v []float64) float64 {
		return stat.StdDev(v, nil)
	}))
	r.RegisterFunction("skewness_of_numeric_features", moment(func(v []float64) float64 {
		return stat.Skew(v, nil)
	}))
	r.RegisterFunction("kurtosis_of_numeric_features", moment(func(v []float64) float64 {
		return stat.ExKurtosis(v, nil)
	}))
}

// moment builds a producing function that computes one statistic per
// numeric feature and returns the min, max, mean and standard deviation of
// those statistics. With no numeric features every output is NaN.
// Args: NoNaNNumericFeatures.
func moment(statistic func([]float64) float64) registry.ComputeFunc {
	return func(_ context.Context, call registry.Call) ([]any, error) {
		features := call.Args[0].([]dataset.Column)

		perFeature := make([]float64, 0, len(features))
		for _, col := range features {
			if len(col.Numeric) == 0 {
				continue
			}
			perFeature = append(perFeature, statistic(col.Numeric))
		}
		min, max, mean, stdev := aggregate(perFeature)
		return []any{min, max, mean, stdev}, nil
	}
}

// aggregate summarizes a slice as (min, max, mean, stdev); an empty slice
// yields NaNs across the board.
func aggregate(values []float64) (min, max, mean, stdev float64) {
	if len(values) == 0 {
		nan := math.NaN()
		return nan, nan, nan, nan
	}
	min, max = values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	mean = stat.Mean(values, nil)
	if len(values) < 2 {
		stdev = 0
	} else {
		stdev = stat.StdDev(values, nil)
	}
	return min, max, mean, stdev
}
