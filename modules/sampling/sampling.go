package sampling

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// sampleColumns draws a uniform subset of columns when the table is wider
// than the declared column bound. Args: X, SampleShape.
func sampleColumns(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	shape := call.Args[1].(dataset.SampleShape)

	if shape.Cols == 0 || x.NumCols() <= shape.Cols {
		return []any{x}, nil
	}
	rng := newRNG(call.Seed)
	indices := rng.Perm(x.NumCols())[:shape.Cols]
	return []any{x.SelectColumns(indices)}, nil
}

// sampleRows draws a row sample when the table is taller than the declared
// row bound: stratified by class when a target is present, uniform
// otherwise. Args: XSampledColumns, Y, SampleShape, NFolds.
func sampleRows(_ context.Context, call registry.Call) ([]any, error) {
	x := call.Args[0].(*dataset.Table)
	y, _ := call.Args[1].(*dataset.Series)
	shape := call.Args[2].(dataset.SampleShape)
	folds := call.Args[3].(int)

	if shape.Rows == 0 || x.NumRows() <= shape.Rows {
		return []any{x, y}, nil
	}
	rng := newRNG(call.Seed)

	if y == nil {
		rows := rng.Perm(x.NumRows())[:shape.Rows]
		return []any{x.SelectRows(rows), y}, nil
	}

	rows := stratifiedRows(y, shape.Rows, folds, rng)
	return []any{x.SelectRows(rows), y.Select(rows)}, nil
}

// stratifiedRows samples row indices proportionally per class, keeping at
// least min(folds, class size) rows of every class so downstream cross
// validation stays feasible.
func stratifiedRows(y *dataset.Series, sampleSize, folds int, rng *rand.Rand) []int {
	byClass := make(map[string][]int)
	for i := 0; i < y.Len(); i++ {
		label := y.Label(i)
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]string, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	alloc := allocate(byClass, classes, y.Len(), sampleSize, folds)

	var rows []int
	for _, label := range classes {
		indices := byClass[label]
		shuffled := make([]int, len(indices))
		for j, p := range rng.Perm(len(indices)) {
			shuffled[j] = indices[p]
		}
		rows = append(rows, shuffled[:alloc[label]]...)
	}
	return rows
}

// allocate distributes sampleSize rows across classes by largest-remainder
// proportional allocation, then clamps each class to
// [min(folds, size), size] and rebalances deterministically.
func allocate(byClass map[string][]int, classes []string, total, sampleSize, folds int) map[string]int {
	alloc := make(map[string]int, len(classes))
	type remainder struct {
		label string
		rem   float64
	}
	var rems []remainder
	sum := 0
	for _, label := range classes {
		exact := float64(len(byClass[label])) * float64(sampleSize) / float64(total)
		a := int(exact)
		alloc[label] = a
		sum += a
		rems = append(rems, remainder{label: label, rem: exact - float64(a)})
	}
	sort.Slice(rems, func(i, j int) bool {
		if rems[i].rem != rems[j].rem {
			return rems[i].rem > rems[j].rem
		}
		return rems[i].label < rems[j].label
	})
	for i := 0; sum < sampleSize; i = (i + 1) % len(rems) {
		alloc[rems[i].label]++
		sum++
	}

	floor := func(label string) int {
		size := len(byClass[label])
		if folds < size {
			return folds
		}
		return size
	}
	for _, label := range classes {
		if f := floor(label); alloc[label] < f {
			sum += f - alloc[label]
			alloc[label] = f
		}
		if size := len(byClass[label]); alloc[label] > size {
			sum -= alloc[label] - size
			alloc[label] = size
		}
	}
	// Shed any excess introduced by clamping, largest allocations first.
	for sum > sampleSize {
		best := ""
		for _, label := range classes {
			if alloc[label] <= floor(label) {
				continue
			}
			if best == "" || alloc[label] > alloc[best] {
				best = label
			}
		}
		if best == "" {
			break
		}
		alloc[best]--
		sum--
	}
	// And fill any shortfall from classes with headroom left.
	for sum < sampleSize {
		best := ""
		for _, label := range classes {
			if alloc[label] >= len(byClass[label]) {
				continue
			}
			if best == "" || len(byClass[label])-alloc[label] > len(byClass[best])-alloc[best] {
				best = label
			}
		}
		if best == "" {
			break
		}
		alloc[best]++
		sum++
	}
	return alloc
}
