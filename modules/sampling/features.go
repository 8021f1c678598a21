package sampling

import (
	"context"
	"math"
	"strconv"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

// categoricalFeatures returns each declared-categorical column with its
// missing rows dropped. Args: XSample, ColumnTypes.
func categoricalFeatures(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	types := call.Args[1].(map[string]dataset.ColumnType)

	var out []dataset.Column
	for _, col := range x.Columns() {
		if types[col.Name] != dataset.Categorical {
			continue
		}
		out = append(out, asLabels(col).DropMissing())
	}
	return []any{out}, nil
}

// categoricalFeaturesWithClass pairs each declared-categorical column with
// the target labels of the rows where the feature is present.
// Args: XSample, YSample, ColumnTypes.
func categoricalFeaturesWithClass(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	y := call.Args[1].(*dataset.Series)
	types := call.Args[2].(map[string]dataset.ColumnType)

	var out []dataset.FeatureClassPair
	for _, col := range x.Columns() {
		if types[col.Name] != dataset.Categorical {
			continue
		}
		out = append(out, pairWithClass(asLabels(col), y))
	}
	return []any{out}, nil
}

// numericFeatures returns each declared-numeric column with its missing
// rows dropped. Args: XSample, ColumnTypes.
func numericFeatures(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	types := call.Args[1].(map[string]dataset.ColumnType)

	var out []dataset.Column
	for _, col := range x.Columns() {
		if types[col.Name] != dataset.Numeric {
			continue
		}
		numeric := dataset.Column{Name: col.Name, Numeric: numericValues(col)}
		out = append(out, numeric.DropMissing())
	}
	return []any{out}, nil
}

// binnedNumericFeatures discretizes each numeric feature into equal-width
// bins, one bin count per feature following the cube-root rule.
// Args: NoNaNNumericFeatures.
func binnedNumericFeatures(_ context.Context, call registry.Call) ([]any, error) {
	features := call.Args[0].([]dataset.Column)

	out := make([]dataset.Column, len(features))
	for i, col := range features {
		out[i] = binColumn(col)
	}
	return []any{out}, nil
}

// binnedNumericFeaturesWithClass pairs each binned numeric feature with the
// target labels of the rows where the feature is present.
// Args: XSample, YSample, ColumnTypes.
func binnedNumericFeaturesWithClass(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	y := call.Args[1].(*dataset.Series)
	types := call.Args[2].(map[string]dataset.ColumnType)

	var out []dataset.FeatureClassPair
	for _, col := range x.Columns() {
		if types[col.Name] != dataset.Numeric {
			continue
		}
		numeric := dataset.Column{Name: col.Name, Numeric: numericValues(col)}
		pair := pairWithClass(numeric, y)
		pair.Feature = binColumn(pair.Feature)
		out = append(out, pair)
	}
	return []any{out}, nil
}

// pairWithClass keeps the rows where the feature is present and the class
// label is known, aligning feature values with class labels by position.
func pairWithClass(col dataset.Column, y *dataset.Series) dataset.FeatureClassPair {
	var rows []int
	for i := 0; i < col.Len(); i++ {
		if !col.Missing(i) && y.Label(i) != "" {
			rows = append(rows, i)
		}
	}
	feature := col.Select(rows)
	class := make([]string, len(rows))
	for i, r := range rows {
		class[i] = y.Label(r)
	}
	return dataset.FeatureClassPair{Feature: feature, Class: class}
}

// binColumn maps a numeric column onto round(n^(1/3)) equal-width bins and
// returns the bin indices as labels.
func binColumn(col dataset.Column) dataset.Column {
	values := numericValues(col)
	n := len(values)
	bins := int(math.Round(math.Cbrt(float64(n))))
	if bins < 1 {
		bins = 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / float64(bins)
	out := make([]string, n)
	for i, v := range values {
		bin := 0
		if width > 0 {
			bin = int((v - lo) / width)
			if bin >= bins {
				bin = bins - 1
			}
		}
		out[i] = "bin" + strconv.Itoa(bin)
	}
	return dataset.Column{Name: col.Name, Values: out}
}

// asLabels views any column as a label column.
func asLabels(col dataset.Column) dataset.Column {
	return dataset.Column{Name: col.Name, Values: labelValues(col)}
}
