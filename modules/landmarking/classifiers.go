package landmarking

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// classifier is the minimal fit/predict contract the cross-validation
// driver needs. Implementations are deliberately tiny reference learners,
// not tuned models: their scores characterize the dataset, not themselves.
type classifier interface {
	fit(x *mat.Dense, labels []int, classes int)
	predict(x *mat.Dense) []int
}

// varianceFloor keeps degenerate (constant) features from producing zero
// variances and infinite log densities.
const varianceFloor = 1e-9

// gaussianNB is Gaussian naive Bayes: per class, independent normal
// densities per feature plus a class prior.
type gaussianNB struct {
	priors  []float64 // log priors
	means   [][]float64
	vars    [][]float64
	classes int
}

func (g *gaussianNB) fit(x *mat.Dense, labels []int, classes int) {
	rows, cols := x.Dims()
	g.classes = classes
	g.priors = make([]float64, classes)
	g.means = make([][]float64, classes)
	g.vars = make([][]float64, classes)

	byClass := make([][]int, classes)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}
	for c := 0; c < classes; c++ {
		count := len(byClass[c])
		g.means[c] = make([]float64, cols)
		g.vars[c] = make([]float64, cols)
		if count == 0 {
			g.priors[c] = math.Inf(-1)
			for j := 0; j < cols; j++ {
				g.vars[c][j] = varianceFloor
			}
			continue
		}
		g.priors[c] = math.Log(float64(count) / float64(rows))
		column := make([]float64, count)
		for j := 0; j < cols; j++ {
			for i, row := range byClass[c] {
				column[i] = x.At(row, j)
			}
			g.means[c][j] = stat.Mean(column, nil)
			v := stat.Variance(column, nil)
			if math.IsNaN(v) || v < varianceFloor {
				v = varianceFloor
			}
			g.vars[c][j] = v
		}
	}
}

func (g *gaussianNB) predict(x *mat.Dense) []int {
	rows, cols := x.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		best, bestScore := 0, math.Inf(-1)
		for c := 0; c < g.classes; c++ {
			score := g.priors[c]
			for j := 0; j < cols; j++ {
				diff := x.At(i, j) - g.means[c][j]
				score -= 0.5 * (math.Log(2*math.Pi*g.vars[c][j]) + diff*diff/g.vars[c][j])
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		out[i] = best
	}
	return out
}

// nearestNeighbors is a brute-force k-NN classifier under Euclidean
// distance. Ties in the vote go to the lowest class index.
type nearestNeighbors struct {
	k       int
	train   *mat.Dense
	labels  []int
	classes int
}

func (n *nearestNeighbors) fit(x *mat.Dense, labels []int, classes int) {
	n.train = x
	n.labels = labels
	n.classes = classes
}

func (n *nearestNeighbors) predict(x *mat.Dense) []int {
	rows, cols := x.Dims()
	trainRows, _ := n.train.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		type neighbor struct {
			dist  float64
			label int
		}
		// Track the k closest rows with a simple insertion pass; training
		// sets here are small samples, not full datasets.
		nearest := make([]neighbor, 0, n.k)
		for t := 0; t < trainRows; t++ {
			dist := 0.0
			for j := 0; j < cols; j++ {
				d := x.At(i, j) - n.train.At(t, j)
				dist += d * d
			}
			if len(nearest) < n.k {
				nearest = append(nearest, neighbor{dist, n.labels[t]})
			} else if dist < nearest[len(nearest)-1].dist {
				nearest[len(nearest)-1] = neighbor{dist, n.labels[t]}
			} else {
				continue
			}
			for p := len(nearest) - 1; p > 0 && nearest[p].dist < nearest[p-1].dist; p-- {
				nearest[p], nearest[p-1] = nearest[p-1], nearest[p]
			}
		}
		votes := make([]int, n.classes)
		for _, nb := range nearest {
			votes[nb.label]++
		}
		best := 0
		for c, v := range votes {
			if v > votes[best] {
				best = c
			}
		}
		out[i] = best
	}
	return out
}

// stump is a one-level decision tree. The default splitter picks the
// feature/threshold pair with the lowest weighted child entropy; the random
// splitter draws both from the seeded generator.
type stump struct {
	random bool
	rng    *rand.Rand

	feature   int
	threshold float64
	left      int
	right     int
}

func (s *stump) fit(x *mat.Dense, labels []int, classes int) {
	_, cols := x.Dims()
	if s.random {
		s.feature = s.rng.IntN(cols)
		lo, hi := columnRange(x, s.feature)
		s.threshold = lo + s.rng.Float64()*(hi-lo)
	} else {
		s.feature, s.threshold = bestSplit(x, labels, classes)
	}
	s.left, s.right = sideMajorities(x, labels, classes, s.feature, s.threshold)
}

func (s *stump) predict(x *mat.Dense) []int {
	rows, _ := x.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		if x.At(i, s.feature) <= s.threshold {
			out[i] = s.left
		} else {
			out[i] = s.right
		}
	}
	return out
}

func columnRange(x *mat.Dense, j int) (lo, hi float64) {
	rows, _ := x.Dims()
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < rows; i++ {
		lo = math.Min(lo, x.At(i, j))
		hi = math.Max(hi, x.At(i, j))
	}
	return lo, hi
}

// bestSplit scans every feature for the threshold minimizing the weighted
// entropy of the two children.
func bestSplit(x *mat.Dense, labels []int, classes int) (feature int, threshold float64) {
	rows, cols := x.Dims()
	bestScore := math.Inf(1)
	feature, threshold = 0, 0

	for j := 0; j < cols; j++ {
		values := make([]float64, rows)
		for i := 0; i < rows; i++ {
			values[i] = x.At(i, j)
		}
		for _, t := range candidateThresholds(values) {
			leftCounts := make([]float64, classes)
			rightCounts := make([]float64, classes)
			nLeft, nRight := 0.0, 0.0
			for i := 0; i < rows; i++ {
				if values[i] <= t {
					leftCounts[labels[i]]++
					nLeft++
				} else {
					rightCounts[labels[i]]++
					nRight++
				}
			}
			score := (nLeft*countEntropy(leftCounts, nLeft) +
				nRight*countEntropy(rightCounts, nRight)) / float64(rows)
			if score < bestScore {
				bestScore = score
				feature, threshold = j, t
			}
		}
	}
	return feature, threshold
}

// candidateThresholds returns midpoints between consecutive distinct sorted
// values, thinned to a bounded number of candidates.
func candidateThresholds(values []float64) []float64 {
	const maxCandidates = 32
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var mids []float64
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			mids = append(mids, (sorted[i]+sorted[i-1])/2)
		}
	}
	if len(mids) <= maxCandidates {
		return mids
	}
	stride := len(mids) / maxCandidates
	var out []float64
	for i := 0; i < len(mids); i += stride {
		out = append(out, mids[i])
	}
	return out
}

func countEntropy(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := c / total
		h -= p * math.Log(p)
	}
	return h
}

// sideMajorities returns the majority class on each side of the split.
func sideMajorities(x *mat.Dense, labels []int, classes, feature int, threshold float64) (left, right int) {
	rows, _ := x.Dims()
	leftCounts := make([]int, classes)
	rightCounts := make([]int, classes)
	for i := 0; i < rows; i++ {
		if x.At(i, feature) <= threshold {
			leftCounts[labels[i]]++
		} else {
			rightCounts[labels[i]]++
		}
	}
	majority := func(counts []int) int {
		best := 0
		for c, v := range counts {
			if v > counts[best] {
				best = c
			}
		}
		return best
	}
	return majority(leftCounts), majority(rightCounts)
}
