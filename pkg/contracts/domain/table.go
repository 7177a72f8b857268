package domain

import (
	"fmt"
)

// Table is an ordered, column-labelled set of rows. Every row has exactly
// len(Columns) cells. Operations return new tables; row slices are never
// mutated once a table has been handed to another component.
type Table struct {
	Name    string    `json:"name"`
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

// NewTable creates an empty table with the given columns
func NewTable(name string, columns []string) Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{Name: name, Columns: cols, Rows: [][]Value{}}
}

// AppendRow adds a row. Short rows are padded with nulls.
func (t *Table) AppendRow(values ...Value) error {
	if len(values) > len(t.Columns) {
		return fmt.Errorf("table %s: row has %d cells but only %d columns", t.Name, len(values), len(t.Columns))
	}
	row := make([]Value, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the column exists
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Value returns the cell at row/column. Absent columns read as null.
func (t Table) Value(row int, column string) Value {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return Null()
	}
	return t.Rows[row][idx]
}

// Column returns a copy of every value in the named column.
func (t Table) Column(name string) ([]Value, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Record returns the row as a column-name map.
func (t Table) Record(row int) map[string]Value {
	rec := make(map[string]Value, len(t.Columns))
	for i, c := range t.Columns {
		rec[c] = t.Rows[row][i]
	}
	return rec
}

// Clone deep-copies the table.
func (t Table) Clone() Table {
	out := NewTable(t.Name, t.Columns)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// WithColumns relabels the columns. Cells are shared with the receiver.
func (t Table) WithColumns(columns []string) (Table, error) {
	if len(columns) != len(t.Columns) {
		return Table{}, fmt.Errorf("table %s: %d labels for %d columns", t.Name, len(columns), len(t.Columns))
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{Name: t.Name, Columns: cols, Rows: t.Rows}, nil
}

// Select returns the rows at the given indexes, in that order.
func (t Table) Select(rows []int) Table {
	out := NewTable(t.Name, t.Columns)
	out.Rows = make([][]Value, 0, len(rows))
	for _, i := range rows {
		r := make([]Value, len(t.Columns))
		copy(r, t.Rows[i])
		out.Rows = append(out.Rows, r)
	}
	return out
}

// DropColumn removes the named column if present.
func (t Table) DropColumn(name string) Table {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return t.Clone()
	}
	cols := make([]string, 0, len(t.Columns)-1)
	cols = append(cols, t.Columns[:idx]...)
	cols = append(cols, t.Columns[idx+1:]...)
	out := NewTable(t.Name, cols)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, 0, len(cols))
		r = append(r, row[:idx]...)
		r = append(r, row[idx+1:]...)
		out.Rows[i] = r
	}
	return out
}

// SetColumn replaces the named column, or appends it when absent.
func (t Table) SetColumn(name string, values []Value) (Table, error) {
	if len(values) != len(t.Rows) {
		return Table{}, fmt.Errorf("table %s: column %s has %d values for %d rows", t.Name, name, len(values), len(t.Rows))
	}
	idx := t.ColumnIndex(name)
	cols := t.Columns
	if idx < 0 {
		cols = append(append([]string{}, t.Columns...), name)
	}
	out := NewTable(t.Name, cols)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(cols))
		copy(r, row)
		if idx < 0 {
			r[len(cols)-1] = values[i]
		} else {
			r[idx] = values[i]
		}
		out.Rows[i] = r
	}
	return out, nil
}

// Head returns at most n leading rows.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t.Clone()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Select(idx)
}

// Records converts every row into a column-name map, for JSON rendering.
func (t Table) Records() []map[string]Value {
	out := make([]map[string]Value, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Record(i)
	}
	return out
}
