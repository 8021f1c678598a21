package landmarking

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/vk/metafeatgo/pkg/dataset"
)

// crossValidate scores a classifier with stratified k-fold cross validation
// and returns the mean error rate and mean Cohen's kappa across folds.
func crossValidate(
	x *dataset.Table,
	y *dataset.Series,
	folds int,
	seed int64,
	newClassifier func(*rand.Rand) classifier,
) (errRate, kappa float64) {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	features := matrix(x)
	labels, classes := encodeLabels(y)
	assignment := foldAssignment(labels, classes, folds, rng)

	sumAccuracy, sumKappa := 0.0, 0.0
	for fold := 0; fold < folds; fold++ {
		var trainRows, testRows []int
		for i, f := range assignment {
			if f == fold {
				testRows = append(testRows, i)
			} else {
				trainRows = append(trainRows, i)
			}
		}

		clf := newClassifier(rng)
		clf.fit(selectRows(features, trainRows), selectInts(labels, trainRows), classes)
		predicted := clf.predict(selectRows(features, testRows))
		actual := selectInts(labels, testRows)

		sumAccuracy += accuracy(actual, predicted)
		sumKappa += cohenKappa(actual, predicted, classes)
	}
	mean := 1.0 / float64(folds)
	return 1 - sumAccuracy*mean, sumKappa * mean
}

// encodeLabels maps class labels onto 0..k-1 in sorted label order.
func encodeLabels(y *dataset.Series) (labels []int, classes int) {
	index := make(map[string]int)
	for _, class := range y.Classes() {
		index[class] = len(index)
	}
	labels = make([]int, y.Len())
	for i := range labels {
		labels[i] = index[y.Label(i)]
	}
	return labels, len(index)
}

// foldAssignment deals each class's rows round-robin across folds after a
// seeded shuffle, so every fold sees every class when the pre-flight
// per-class row check held.
func foldAssignment(labels []int, classes, folds int, rng *rand.Rand) []int {
	byClass := make([][]int, classes)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}
	assignment := make([]int, len(labels))
	for class := 0; class < classes; class++ {
		rows := byClass[class]
		shuffled := make([]int, len(rows))
		for j, p := range rng.Perm(len(rows)) {
			shuffled[j] = rows[p]
		}
		for j, row := range shuffled {
			assignment[row] = j % folds
		}
	}
	return assignment
}

func selectRows(m *mat.Dense, rows []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}

func selectInts(v []int, rows []int) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = v[r]
	}
	return out
}

func accuracy(actual, predicted []int) float64 {
	if len(actual) == 0 {
		return 0
	}
	hits := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(actual))
}

// cohenKappa measures agreement between actual and predicted labels beyond
// chance. Degenerate folds where chance agreement is total score zero.
func cohenKappa(actual, predicted []int, classes int) float64 {
	n := float64(len(actual))
	if n == 0 {
		return 0
	}
	po := accuracy(actual, predicted)

	actualCounts := make([]float64, classes)
	predictedCounts := make([]float64, classes)
	for i := range actual {
		actualCounts[actual[i]]++
		predictedCounts[predicted[i]]++
	}
	pe := 0.0
	for c := 0; c < classes; c++ {
		pe += (actualCounts[c] / n) * (predictedCounts[c] / n)
	}
	if 1-pe < 1e-12 {
		return 0
	}
	return (po - pe) / (1 - pe)
}
