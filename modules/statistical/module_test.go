package statistical

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
	"gonum.org/v1/gonum/stat"
)

func TestMomentOfNumericFeatures(t *testing.T) {
	features := []dataset.Column{
		{Name: "a", Numeric: []float64{1, 2, 3}},
		{Name: "b", Numeric: []float64{4, 6, 8}},
	}
	means := moment(func(v []float64) float64 { return stat.Mean(v, nil) })

	out, err := means(context.Background(), registry.Call{Args: []any{features}})
	require.NoError(t, err)

	assert.Equal(t, 2.0, out[0], "min of per-feature means")
	assert.Equal(t, 6.0, out[1], "max of per-feature means")
	assert.Equal(t, 4.0, out[2], "mean of per-feature means")
	assert.InDelta(t, 2.8284, out[3].(float64), 1e-4, "stdev of per-feature means")
}

func TestMomentWithNoNumericFeatures(t *testing.T) {
	means := moment(func(v []float64) float64 { return stat.Mean(v, nil) })

	out, err := means(context.Background(), registry.Call{Args: []any{[]dataset.Column(nil)}})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(out[i].(float64)), "output %d", i)
	}
}

func TestMomentWithSingleFeature(t *testing.T) {
	features := []dataset.Column{
		{Name: "a", Numeric: []float64{1, 2, 3}},
	}
	stdevs := moment(func(v []float64) float64 { return stat.StdDev(v, nil) })

	out, err := stdevs(context.Background(), registry.Call{Args: []any{features}})
	require.NoError(t, err)

	assert.Equal(t, 1.0, out[0])
	assert.Equal(t, 1.0, out[1])
	assert.Equal(t, 1.0, out[2])
	assert.Equal(t, 0.0, out[3], "one feature has no spread")
}

func TestAggregateSkipsEmptyColumns(t *testing.T) {
	features := []dataset.Column{
		{Name: "a", Numeric: []float64{2, 2, 2}},
		{Name: "empty", Numeric: []float64{}},
	}
	means := moment(func(v []float64) float64 { return stat.Mean(v, nil) })

	out, err := means(context.Background(), registry.Call{Args: []any{features}})
	require.NoError(t, err)

	assert.Equal(t, 2.0, out[2])
	assert.Equal(t, 0.0, out[3])
}
