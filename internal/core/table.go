package core

import (
	"slices"
	"strconv"
)

// Table is the central tabular value: an ordered list of unique column names
// and an ordered list of rows. Row order is insertion order and is preserved
// across edits. Every row carries exactly one value per column.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Row maps a column name to its cell value. Cells are stored as raw strings;
// typed interpretation is deferred entirely to the schema inferencer.
type Row map[string]string

// NewRow returns a row with every column set to the empty string.
func NewRow(columns []string) Row {
	r := make(Row, len(columns))
	for _, col := range columns {
		r[col] = ""
	}
	return r
}

// Clone returns a deep copy of the table. Snapshots pushed to history or
// handed to the remote adapter must never alias live row maps.
func (t Table) Clone() Table {
	cols := slices.Clone(t.Columns)
	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		rows[i] = cp
	}
	return Table{Columns: cols, Rows: rows}
}

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// RowCount returns the number of data rows.
func (t Table) RowCount() int { return len(t.Rows) }

// ColumnCount returns the number of columns.
func (t Table) ColumnCount() int { return len(t.Columns) }

// Equal reports whether two tables have identical columns, row order, and
// cell values.
func (t Table) Equal(other Table) bool {
	if !slices.Equal(t.Columns, other.Columns) {
		return false
	}
	if len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, row := range t.Rows {
		o := other.Rows[i]
		if len(row) != len(o) {
			return false
		}
		for k, v := range row {
			if ov, ok := o[k]; !ok || ov != v {
				return false
			}
		}
	}
	return true
}

// Validate checks the structural invariants: at least one column, unique
// column names, and every row's key set equal to Columns.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return &EditError{Op: "validate", Reason: "table has no columns"}
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		if _, dup := seen[col]; dup {
			return &EditError{Op: "validate", Reason: "duplicate column " + col}
		}
		seen[col] = struct{}{}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return &EditError{Op: "validate", Reason: "row " + strconv.Itoa(i) + " is ragged"}
		}
		for _, col := range t.Columns {
			if _, ok := row[col]; !ok {
				return &EditError{Op: "validate", Reason: "row " + strconv.Itoa(i) + " missing column " + col}
			}
		}
	}
	return nil
}
