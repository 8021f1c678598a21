// Package simple provides the cheap counting and ratio metafeatures that
// need nothing beyond the feature table, the target and the column types.
package simple

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
	r.RegisterFunction("count_instances", countInstances)
	r.RegisterFunction("count_features", countFeatures)
	r.RegisterFunction("count_classes", countClasses)
	r.RegisterFunction("count_features_by_type", countFeaturesByType)
	r.RegisterFunction("ratio", ratio)
	r.RegisterFunction("missing_values", missingValues)
	r.RegisterFunction("class_probabilities", classProbabilities)
}

// countInstances reports the number of rows. Args: X.
func countInstances(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	return []any{float64(x.NumRows())}, nil
}

// countFeatures reports the number of columns. Args: X.
func countFeatures(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	return []any{float64(x.NumCols())}, nil
}

// countClasses reports the number of distinct target classes. Args: Y.
func countClasses(_ context.Context, call registry.Call) ([]any, error) {
	y := call.Args[0].(*dataset.Series)
	return []any{float64(len(y.Classes()))}, nil
}

// countFeaturesByType reports the numeric and categorical column counts in
// one call. Args: X, ColumnTypes.
func countFeaturesByType(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	types := call.Args[1].(map[string]dataset.ColumnType)

	numeric, categorical := 0.0, 0.0
	for _, name := range x.ColumnNames() {
		if types[name] == dataset.Numeric {
			numeric++
		} else {
			categorical++
		}
	}
	return []any{numeric, categorical}, nil
}

// ratio divides two previously computed scalars. Args: numerator,
// denominator. A zero denominator yields NaN, which downstream consumers
// treat as missing.
func ratio(_ context.Context, call registry.Call) ([]any, error) {
	num := call.Args[0].(float64)
	den := call.Args[1].(float64)
	if den == 0 {
		return []any{math.NaN()}, nil
	}
	return []any{num / den}, nil
}

// missingValues reports the missing-value counts and ratios, cell-wise and
// row-wise, in one call. Args: X.
func missingValues(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)

	cells := x.NumRows() * x.NumCols()
	missingCells := 0
	rowsWithMissing := 0
	for row := 0; row < x.NumRows(); row++ {
		rowHit := false
		for _, col := range x.Columns() {
			if col.Missing(row) {
				missingCells++
				rowHit = true
			}
		}
		if rowHit {
			rowsWithMissing++
		}
	}

	cellRatio := math.NaN()
	if cells > 0 {
		cellRatio = float64(missingCells) / float64(cells)
	}
	rowRatio := math.NaN()
	if x.NumRows() > 0 {
		rowRatio = float64(rowsWithMissing) / float64(x.NumRows())
	}
	return []any{
		float64(missingCells),
		cellRatio,
		float64(rowsWithMissing),
		rowRatio,
	}, nil
}

// classProbabilities reports summary statistics over the empirical class
// distribution of the target, in one call. Args: Y.
func classProbabilities(_ context.Context, call registry.Call) ([]any, error) {
	y := call.Args[0].(*dataset.Series)

	counts := y.ClassCounts()
	total := float64(y.Len())
	probs := make([]float64, 0, len(counts))
	for _, class := range y.Classes() {
		probs = append(probs, float64(counts[class])/total)
	}
	if len(probs) == 0 {
		nan := math.NaN()
		return []any{nan, nan, nan, nan}, nil
	}

	min, max := probs[0], probs[0]
	for _, p := range probs {
		min = math.Min(min, p)
		max = math.Max(max, p)
	}
	return []any{
		min,
		max,
		stat.Mean(probs, nil),
		stat.StdDev(probs, nil),
	}, nil
}
