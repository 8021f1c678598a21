package sampling

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

// preprocess turns the sampled feature table into an all-numeric one:
// missing entries are imputed by a seeded draw from the column's observed
// values, and categorical columns are one-hot encoded. The imputation pool
// is the column-sampled table before row sampling, so a sparse sample still
// draws from the full column. Args: XSample, XSampledColumns, ColumnTypes.
func preprocess(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	pool := call.Args[1].(*dataset.Table)
	types := call.Args[2].(map[string]dataset.ColumnType)
	rng := newRNG(call.Seed)

	var out []dataset.Column
	for _, col := range x.Columns() {
		poolCol, ok := pool.Column(col.Name)
		if !ok {
			poolCol = col
		}
		if types[col.Name] == dataset.Numeric {
			out = append(out, imputeNumeric(col, poolCol, rng))
			continue
		}
		out = append(out, oneHot(imputeLabels(col, poolCol, rng))...)
	}
	table, err := dataset.NewTable(out)
	if err != nil {
		return nil, err
	}
	return []any{table}, nil
}

func imputeNumeric(col, pool dataset.Column, rng rngSource) dataset.Column {
	observed := numericValues(pool.DropMissing())
	values := numericValues(col)
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) && len(observed) > 0 {
			out[i] = observed[rng.IntN(len(observed))]
			continue
		}
		out[i] = v
	}
	return dataset.Column{Name: col.Name, Numeric: out}
}

// imputeLabels returns the column's values as labels with missing entries
// replaced by a seeded draw from the observed pool labels.
func imputeLabels(col, pool dataset.Column, rng rngSource) dataset.Column {
	observed := labelValues(pool.DropMissing())
	out := make([]string, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.Missing(i) && len(observed) > 0 {
			out[i] = observed[rng.IntN(len(observed))]
			continue
		}
		out[i] = col.Label(i)
	}
	return dataset.Column{Name: col.Name, Values: out}
}

// oneHot expands a label column into one indicator column per distinct
// label, in sorted label order.
func oneHot(col dataset.Column) []dataset.Column {
	distinct := make(map[string]struct{})
	for _, v := range col.Values {
		distinct[v] = struct{}{}
	}
	labels := make([]string, 0, len(distinct))
	for label := range distinct {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]dataset.Column, len(labels))
	for i, label := range labels {
		indicator := make([]float64, len(col.Values))
		for row, v := range col.Values {
			if v == label {
				indicator[row] = 1
			}
		}
		out[i] = dataset.Column{Name: col.Name + "=" + label, Numeric: indicator}
	}
	return out
}

// rngSource is the slice-draw subset of math/rand/v2 the imputers need.
type rngSource interface {
	IntN(n int) int
}

// numericValues reads a column as float64s regardless of storage; values
// that do not parse become NaN.
func numericValues(col dataset.Column) []float64 {
	if col.Numeric != nil {
		return col.Numeric
	}
	out := make([]float64, len(col.Values))
	for i, v := range col.Values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

// labelValues reads a column as labels regardless of storage.
func labelValues(col dataset.Column) []string {
	if col.Values != nil {
		return col.Values
	}
	out := make([]string, len(col.Numeric))
	for i := range col.Numeric {
		out[i] = col.Label(i)
	}
	return out
}
