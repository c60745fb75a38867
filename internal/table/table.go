// Package table holds the in-memory dataset shared by ingestion, profiling
// and chart aggregation.
//
// A Table is built once per uploaded dataset and never mutated afterwards, so
// any number of goroutines may read it without locking.
package table

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrEmptyColumnName = errors.New("empty column name")
	ErrRaggedColumns   = errors.New("columns have different row counts")
)

// Column is a read-only view of one named column.
type Column struct {
	Name   string
	Kind   Kind
	values []Value
}

// Len returns the number of rows.
func (c Column) Len() int { return len(c.values) }

// At returns the cell at row i.
func (c Column) At(i int) Value { return c.values[i] }

// Floats returns the numeric cells in row order, skipping everything else.
func (c Column) Floats() []float64 {
	out := make([]float64, 0, len(c.values))
	for _, v := range c.values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Table is an ordered set of equally long named columns.
type Table struct {
	names []string
	index map[string]int
	cols  []Column
	rows  int
}

// New validates and assembles a table. The value slices are owned by the
// table afterwards and must not be modified by the caller.
func New(names []string, values [][]Value) (*Table, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%d names for %d columns: %w", len(names), len(values), ErrRaggedColumns)
	}

	t := &Table{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
		cols:  make([]Column, len(names)),
	}
	copy(t.names, names)

	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrEmptyColumnName)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateColumn)
		}
		if i > 0 && len(values[i]) != len(values[0]) {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w",
				name, len(values[i]), len(values[0]), ErrRaggedColumns)
		}
		t.index[name] = i
		t.cols[i] = Column{Name: name, Kind: columnKind(values[i]), values: values[i]}
	}
	if len(values) > 0 {
		t.rows = len(values[0])
	}
	return t, nil
}

// columnKind is Number when every non-missing cell is a number (including
// the all-missing case), Time when every non-missing cell is a time, else Text.
func columnKind(values []Value) Kind {
	kind := KindNumber
	seen := false
	for _, v := range values {
		switch v.Kind() {
		case KindMissing:
			continue
		case KindText:
			return KindText
		case KindTime:
			if seen && kind != KindTime {
				return KindText
			}
			kind = KindTime
		case KindNumber:
			if seen && kind != KindNumber {
				return KindText
			}
		}
		seen = true
	}
	return kind
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// NumRows returns the row count shared by every column.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.cols) }

// Column looks a column up by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) Column { return t.cols[i] }

// Head returns a table sharing storage with t restricted to the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n >= t.rows {
		return t
	}
	values := make([][]Value, len(t.cols))
	for i, c := range t.cols {
		values[i] = c.values[:n:n]
	}
	head, _ := New(t.names, values) // already validated
	return head
}

// Records converts every row into an ordered record.
func (t *Table) Records() []Record {
	out := make([]Record, t.rows)
	for r := 0; r < t.rows; r++ {
		rec := make(Record, len(t.cols))
		for c, col := range t.cols {
			rec[c] = Field{Name: col.Name, Value: col.values[r]}
		}
		out[r] = rec
	}
	return out
}
