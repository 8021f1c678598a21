package landmarking

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

// separableData builds a two-class dataset a stump can split perfectly.
func separableData(t *testing.T) (*dataset.Table, *dataset.Series) {
	t.Helper()
	values := make([]float64, 12)
	labels := make([]string, 12)
	for i := range values {
		if i < 6 {
			values[i] = float64(i)
			labels[i] = "low"
		} else {
			values[i] = 100 + float64(i)
			labels[i] = "high"
		}
	}
	table, err := dataset.NewTable([]dataset.Column{
		{Name: "f", Numeric: values},
	})
	require.NoError(t, err)
	return table, &dataset.Series{Name: "class", Values: labels}
}

func TestCrossValidatePerfectClassifiers(t *testing.T) {
	x, y := separableData(t)

	cases := map[string]func(*rand.Rand) classifier{
		"gaussian naive bayes": func(_ *rand.Rand) classifier { return &gaussianNB{} },
		"nearest neighbor":     func(_ *rand.Rand) classifier { return &nearestNeighbors{k: 1} },
		"decision stump":       func(_ *rand.Rand) classifier { return &stump{} },
	}
	for name, newClassifier := range cases {
		t.Run(name, func(t *testing.T) {
			errRate, kappa := crossValidate(x, y, 2, 7, newClassifier)
			assert.InDelta(t, 0.0, errRate, 1e-12)
			assert.InDelta(t, 1.0, kappa, 1e-12)
		})
	}
}

func TestCrossValidateDeterminism(t *testing.T) {
	x, y := separableData(t)
	newStump := func(rng *rand.Rand) classifier { return &stump{random: true, rng: rng} }

	err1, kappa1 := crossValidate(x, y, 3, 42, newStump)
	err2, kappa2 := crossValidate(x, y, 3, 42, newStump)
	assert.Equal(t, err1, err2)
	assert.Equal(t, kappa1, kappa2)
}

func TestEncodeLabels(t *testing.T) {
	y := &dataset.Series{Name: "class", Values: []string{"b", "a", "b", "c"}}
	labels, classes := encodeLabels(y)
	assert.Equal(t, 3, classes)
	assert.Equal(t, []int{1, 0, 1, 2}, labels, "indices follow sorted label order")
}

func TestFoldAssignmentCoversEveryClass(t *testing.T) {
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}
	rng := rand.New(rand.NewPCG(9, 0))
	assignment := foldAssignment(labels, 2, 2, rng)
	require.Len(t, assignment, 8)

	seen := map[[2]int]int{}
	for i, fold := range assignment {
		seen[[2]int{labels[i], fold}]++
	}
	for class := 0; class < 2; class++ {
		for fold := 0; fold < 2; fold++ {
			assert.Equal(t, 2, seen[[2]int{class, fold}],
				"class %d fold %d", class, fold)
		}
	}
}

func TestCohenKappa(t *testing.T) {
	t.Run("perfect agreement", func(t *testing.T) {
		kappa := cohenKappa([]int{0, 1, 0, 1}, []int{0, 1, 0, 1}, 2)
		assert.InDelta(t, 1.0, kappa, 1e-12)
	})

	t.Run("constant prediction scores zero", func(t *testing.T) {
		kappa := cohenKappa([]int{0, 0, 0, 0}, []int{0, 0, 0, 0}, 1)
		assert.Equal(t, 0.0, kappa)
	})

	t.Run("chance-level agreement is near zero", func(t *testing.T) {
		kappa := cohenKappa([]int{0, 0, 1, 1}, []int{0, 1, 0, 1}, 2)
		assert.InDelta(t, 0.0, kappa, 1e-12)
	})
}

func TestLandmarkerHandlers(t *testing.T) {
	x, y := separableData(t)

	t.Run("naive bayes handler", func(t *testing.T) {
		fn := landmarker(func(_ *rand.Rand) classifier { return &gaussianNB{} })
		out, err := fn(context.Background(), registry.Call{
			Args: []any{x, y, 2},
			Seed: 5,
		})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, out[0].(float64), 1e-12)
		assert.InDelta(t, 1.0, out[1].(float64), 1e-12)
	})

	t.Run("knn handler reads k from its literal", func(t *testing.T) {
		out, err := knn(context.Background(), registry.Call{
			Args: []any{x, y, 2, 1.0},
			Seed: 5,
		})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, out[0].(float64), 1e-12)
	})

	t.Run("empty feature matrix yields NaN", func(t *testing.T) {
		empty, err := dataset.NewTable(nil)
		require.NoError(t, err)
		fn := landmarker(func(_ *rand.Rand) classifier { return &gaussianNB{} })
		out, err := fn(context.Background(), registry.Call{
			Args: []any{empty, y, 2},
			Seed: 5,
		})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out[0].(float64)))
		assert.True(t, math.IsNaN(out[1].(float64)))
	})
}

func TestStumpSplit(t *testing.T) {
	x, y := separableData(t)
	features := matrix(x)
	labels, classes := encodeLabels(y)

	s := &stump{}
	s.fit(features, labels, classes)
	predicted := s.predict(features)
	assert.Equal(t, labels, predicted, "separable data splits perfectly")
}
