// Package dataset holds the minimal labeled-table data model the metafeature
// engine computes over: a 2-D feature table, a 1-D target series, and the
// declared column types that drive preprocessing.
package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// ColumnType declares how a column is to be interpreted, independently of how
// its values are stored.
type ColumnType string

const (
	Numeric     ColumnType = "NUMERIC"
	Categorical ColumnType = "CATEGORICAL"
)

// Valid reports whether t is one of the two supported column types.
func (t ColumnType) Valid() bool {
	return t == Numeric || t == Categorical
}

// Column is one labeled column of a Table. Exactly one of Numeric or Values
// is non-nil. Missing entries are NaN in Numeric and "" in Values.
type Column struct {
	Name    string
	Numeric []float64
	Values  []string
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	if c.Numeric != nil {
		return len(c.Numeric)
	}
	return len(c.Values)
}

// IsNumeric reports whether the column's storage is numeric.
func (c Column) IsNumeric() bool {
	return c.Numeric != nil
}

// Missing reports whether the value at row i is missing.
func (c Column) Missing(i int) bool {
	if c.Numeric != nil {
		return math.IsNaN(c.Numeric[i])
	}
	return c.Values[i] == ""
}

// Label renders the value at row i as a string, for use as a category label.
func (c Column) Label(i int) string {
	if c.Numeric != nil {
		return strconv.FormatFloat(c.Numeric[i], 'g', -1, 64)
	}
	return c.Values[i]
}

// DropMissing returns a copy of the column with missing rows removed.
func (c Column) DropMissing() Column {
	out := Column{Name: c.Name}
	if c.Numeric != nil {
		out.Numeric = make([]float64, 0, len(c.Numeric))
		for _, v := range c.Numeric {
			if !math.IsNaN(v) {
				out.Numeric = append(out.Numeric, v)
			}
		}
		return out
	}
	out.Values = make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if v != "" {
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// Select returns a copy of the column restricted to the given row indices.
func (c Column) Select(rows []int) Column {
	out := Column{Name: c.Name}
	if c.Numeric != nil {
		out.Numeric = make([]float64, len(rows))
		for i, r := range rows {
			out.Numeric[i] = c.Numeric[r]
		}
		return out
	}
	out.Values = make([]string, len(rows))
	for i, r := range rows {
		out.Values[i] = c.Values[r]
	}
	return out
}

// Table is an ordered collection of equal-length labeled columns.
type Table struct {
	cols  []Column
	index map[string]int
}

// NewTable builds a Table from columns. All columns must have equal length
// and unique names.
func NewTable(cols []Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if len(t.cols) > 0 && c.Len() != t.cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.cols[0].Len())
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		t.index[c.Name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns in the table.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the table's columns in declared order.
func (t *Table) Columns() []Column { return t.cols }

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// ColumnNames returns the column names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// SelectColumns returns a new table holding the columns at the given indices,
// in the given order.
func (t *Table) SelectColumns(indices []int) *Table {
	cols := make([]Column, len(indices))
	for i, idx := range indices {
		cols[i] = t.cols[idx]
	}
	out, _ := NewTable(cols)
	return out
}

// SelectRows returns a new table restricted to the given row indices.
func (t *Table) SelectRows(rows []int) *Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Select(rows)
	}
	out, _ := NewTable(cols)
	return out
}

// DropEmptyColumns returns a new table without columns whose every value is
// missing.
func (t *Table) DropEmptyColumns() *Table {
	kept := make([]Column, 0, len(t.cols))
	for _, c := range t.cols {
		empty := true
		for i := 0; i < c.Len(); i++ {
			if !c.Missing(i) {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, c)
		}
	}
	out, _ := NewTable(kept)
	return out
}

// SampleShape bounds the feature table after sampling as (rows, columns).
// A zero bound means unbounded along that axis.
type SampleShape struct {
	Rows int
	Cols int
}
