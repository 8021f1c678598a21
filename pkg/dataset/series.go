package dataset

import (
	"sort"
)

// Series is a labeled 1-D sequence, used for the target column. Storage
// follows the same convention as Column.
type Series struct {
	Name    string
	Numeric []float64
	Values  []string
}

// Len returns the number of rows in the series.
func (s *Series) Len() int {
	if s.Numeric != nil {
		return len(s.Numeric)
	}
	return len(s.Values)
}

// IsNumeric reports whether the series' storage is numeric.
func (s *Series) IsNumeric() bool { return s.Numeric != nil }

// Label renders the value at row i as a class label.
func (s *Series) Label(i int) string {
	return Column{Numeric: s.Numeric, Values: s.Values}.Label(i)
}

// Labels returns every value rendered as a class label.
func (s *Series) Labels() []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = s.Label(i)
	}
	return out
}

// Classes returns the distinct class labels, sorted.
func (s *Series) Classes() []string {
	counts := s.ClassCounts()
	out := make([]string, 0, len(counts))
	for label := range counts {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// ClassCounts returns the number of rows per class label.
func (s *Series) ClassCounts() map[string]int {
	counts := make(map[string]int)
	for i := 0; i < s.Len(); i++ {
		counts[s.Label(i)]++
	}
	return counts
}

// Select returns a copy of the series restricted to the given row indices.
func (s *Series) Select(rows []int) *Series {
	c := Column{Name: s.Name, Numeric: s.Numeric, Values: s.Values}.Select(rows)
	return &Series{Name: c.Name, Numeric: c.Numeric, Values: c.Values}
}

// InferColumnTypes derives a column-type map from storage: numeric columns
// are NUMERIC, everything else CATEGORICAL. The target, when present, is
// included under its own name.
func InferColumnTypes(features *Table, target *Series) map[string]ColumnType {
	types := make(map[string]ColumnType, features.NumCols()+1)
	for _, c := range features.Columns() {
		if c.IsNumeric() {
			types[c.Name] = Numeric
		} else {
			types[c.Name] = Categorical
		}
	}
	if target != nil {
		if target.IsNumeric() {
			types[target.Name] = Numeric
		} else {
			types[target.Name] = Categorical
		}
	}
	return types
}
