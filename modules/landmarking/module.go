// Package landmarking provides the landmarking metafeatures: error rate and
// Cohen's kappa of simple reference classifiers evaluated with stratified
// cross validation over the preprocessed sample (Reif et al. 2012).
package landmarking

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the package's producing functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("naive_bayes", landmarker(func(_ *rand.Rand) classifier {
		return &gaussianNB{}
	}))
	r.RegisterFunction("knn", knn)
	r.RegisterFunction("decision_stump", landmarker(func(_ *rand.Rand) classifier {
		return &stump{}
	}))
	r.RegisterFunction("random_stump", landmarker(func(rng *rand.Rand) classifier {
		return &stump{random: true, rng: rng}
	}))
}

// landmarker builds the producing function for a classifier constructor.
// Args: PreprocessedX, YSample, NFolds. Outputs: ErrRate, Kappa.
func landmarker(newClassifier func(*rand.Rand) classifier) registry.ComputeFunc {
	return func(_ context.Context, call registry.Call) ([]any, error) {
		x := call.Args[0].(*dataset.Table)
		y := call.Args[1].(*dataset.Series)
		folds := call.Args[2].(int)

		if x.NumCols() == 0 || y == nil {
			return []any{math.NaN(), math.NaN()}, nil
		}
		errRate, kappa := crossValidate(x, y, folds, call.Seed, newClassifier)
		return []any{errRate, kappa}, nil
	}
}

// knn is the k-nearest-neighbors landmarker; k arrives as a literal
// constant from the catalog. Args: PreprocessedX, YSample, NFolds, k.
func knn(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	y := call.Args[1].(*dataset.Series)
	folds := call.Args[2].(int)
	k := int(call.Args[3].(float64))

	if x.NumCols() == 0 || y == nil {
		return []any{math.NaN(), math.NaN()}, nil
	}
	errRate, kappa := crossValidate(x, y, folds, call.Seed, func(_ *rand.Rand) classifier {
		return &nearestNeighbors{k: k}
	})
	return []any{errRate, kappa}, nil
}

// matrix copies an all-numeric table into a dense matrix.
func matrix(x *dataset.Table) *mat.Dense {
	rows, cols := x.NumRows(), x.NumCols()
	m := mat.NewDense(rows, cols, nil)
	for j, col := range x.Columns() {
		for i := 0; i < rows; i++ {
			m.Set(i, j, col.Numeric[i])
		}
	}
	return m
}
