package core

// session.go implements the edit engine: one Session per uploaded file,
// holding the original snapshot, the current table, and a bounded undo
// history.
//
// Concurrency: the engine is single-writer. Every operation takes the
// session mutex for its full duration, so callers may invoke operations from
// multiple goroutines but no two mutations ever interleave. All transforms
// are synchronous and in-memory; only the remote adapter does I/O, and it is
// handed a cloned snapshot, never a live table.

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Session is the per-upload edit state. Create one via Service.CreateSession.
type Session struct {
	ID       string
	FileName string

	mu        sync.Mutex
	raw       []byte // original upload bytes, kept for re-parse
	delimiter Delimiter
	useHeader bool
	// original and originalHeader capture the parse-time state together;
	// Revert restores both.
	original       Table
	originalHeader bool
	current        Table
	history        *History
	lastUsed       time.Time
}

// SessionView is an immutable snapshot of a session for display and upload.
type SessionView struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	Table     Table     `json:"table"`
	Delimiter Delimiter `json:"delimiter"`
	UseHeader bool      `json:"useHeader"`
	UndoDepth int       `json:"undoDepth"`
	Dirty     bool      `json:"dirty"`
}

// View returns a deep-copied snapshot of the session state.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return SessionView{
		ID:        s.ID,
		FileName:  s.FileName,
		Table:     s.current.Clone(),
		Delimiter: s.delimiter,
		UseHeader: s.useHeader,
		UndoDepth: s.history.Depth(),
		Dirty:     !s.current.Equal(s.original),
	}
}

// CurrentTable returns a deep copy of the current table. The copy is safe to
// hand to the inferencer, the SQL generator, or an in-flight remote call.
func (s *Session) CurrentTable() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// SetCell replaces the value of a single cell. No structural change.
func (s *Session) SetCell(rowIndex int, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rowIndex < 0 || rowIndex >= len(s.current.Rows) {
		return &EditError{Op: "set_cell", Reason: fmt.Sprintf("row index %d out of bounds (0-%d)", rowIndex, len(s.current.Rows)-1)}
	}
	if !s.current.HasColumn(column) {
		return &EditError{Op: "set_cell", Reason: fmt.Sprintf("column %q not found", column)}
	}

	s.pushHistory()
	s.current.Rows[rowIndex][column] = value
	return nil
}

// AddRow inserts an empty row at position. Positions past the end (or -1)
// append.
func (s *Session) AddRow(position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 || position > len(s.current.Rows) {
		position = len(s.current.Rows)
	}

	s.pushHistory()
	row := NewRow(s.current.Columns)
	s.current.Rows = slices.Insert(s.current.Rows, position, row)
	return nil
}

// DeleteRow removes the row at rowIndex. Deleting the last remaining row is
// allowed: a zero-row table is still valid, its columns persist.
func (s *Session) DeleteRow(rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rowIndex < 0 || rowIndex >= len(s.current.Rows) {
		return &EditError{Op: "delete_row", Reason: fmt.Sprintf("row index %d out of bounds (0-%d)", rowIndex, len(s.current.Rows)-1)}
	}

	s.pushHistory()
	s.current.Rows = slices.Delete(s.current.Rows, rowIndex, rowIndex+1)
	return nil
}

// AddColumn appends a column with defaultValue in every row.
func (s *Session) AddColumn(name, defaultValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return &EditError{Op: "add_column", Reason: "column name must not be empty"}
	}
	if s.current.HasColumn(name) {
		return &EditError{Op: "add_column", Reason: fmt.Sprintf("column %q already exists", name)}
	}

	s.pushHistory()
	s.current.Columns = append(s.current.Columns, name)
	for _, row := range s.current.Rows {
		row[name] = defaultValue
	}
	return nil
}

// DeleteColumn removes a column. A table must always keep at least one
// column, so deleting the only remaining column is rejected.
func (s *Session) DeleteColumn(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.current.Columns, name)
	if idx < 0 {
		return &EditError{Op: "delete_column", Reason: fmt.Sprintf("column %q not found", name)}
	}
	if len(s.current.Columns) == 1 {
		return &EditError{Op: "delete_column", Reason: "cannot delete the only remaining column"}
	}

	s.pushHistory()
	s.current.Columns = slices.Delete(s.current.Columns, idx, idx+1)
	for _, row := range s.current.Rows {
		delete(row, name)
	}
	return nil
}

// RenameColumn renames old to new, updating every row's key.
func (s *Session) RenameColumn(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.current.Columns, oldName)
	if idx < 0 {
		return &EditError{Op: "rename_column", Reason: fmt.Sprintf("column %q not found", oldName)}
	}
	if newName == "" {
		return &EditError{Op: "rename_column", Reason: "column name must not be empty"}
	}
	if newName == oldName {
		return nil
	}
	if s.current.HasColumn(newName) {
		return &EditError{Op: "rename_column", Reason: fmt.Sprintf("column %q already exists", newName)}
	}

	s.pushHistory()
	s.current.Columns[idx] = newName
	for _, row := range s.current.Rows {
		row[newName] = row[oldName]
		delete(row, oldName)
	}
	return nil
}

// ToggleHeader reclassifies the boundary between header and first data row.
//
// Enabling the header promotes the first data row to column names (blank
// cells become Column_N, duplicates get a numeric suffix). Disabling it
// demotes the current column names to a new first data row and regenerates
// synthetic Column_N names. Toggling on and then off with no intervening
// edits reproduces the pre-toggle arrangement.
func (s *Session) ToggleHeader(useHeader bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if useHeader == s.useHeader {
		return nil
	}

	if useHeader {
		if len(s.current.Rows) == 0 {
			return &EditError{Op: "toggle_header", Reason: "no data row to promote to header"}
		}
		s.pushHistory()
		first := s.current.Rows[0]
		values := make([]string, len(s.current.Columns))
		for i, col := range s.current.Columns {
			values[i] = first[col]
		}
		newColumns := normalizeHeader(values)
		s.current = rekeyTable(s.current, s.current.Rows[1:], newColumns)
	} else {
		s.pushHistory()
		newColumns := syntheticColumns(len(s.current.Columns))
		demoted := make(Row, len(newColumns))
		for i, col := range newColumns {
			demoted[col] = s.current.Columns[i]
		}
		rekeyed := rekeyTable(s.current, s.current.Rows, newColumns)
		rekeyed.Rows = append([]Row{demoted}, rekeyed.Rows...)
		s.current = rekeyed
	}
	s.useHeader = useHeader
	return nil
}

// Undo restores the most recent pre-edit snapshot. With an empty history it
// reports ErrNothingToUndo and leaves the table unchanged.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Pop()
	if !ok {
		return ErrNothingToUndo
	}
	s.current = snap.Table
	s.useHeader = snap.UseHeader
	return nil
}

// Revert discards every edit, restoring the table and header flag captured
// at parse time, and clears the undo history. Always succeeds.
func (s *Session) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.original.Clone()
	s.useHeader = s.originalHeader
	s.history.Clear()
}

// UndoDepth returns how many undo steps are currently available.
func (s *Session) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Depth()
}

// pushHistory records the pre-edit state. Callers must hold s.mu.
func (s *Session) pushHistory() {
	s.history.Push(s.current, s.useHeader)
	s.lastUsed = time.Now()
}

// rekeyTable rebuilds rows under new column names, matching by position.
func rekeyTable(t Table, rows []Row, newColumns []string) Table {
	out := Table{Columns: newColumns, Rows: make([]Row, len(rows))}
	for i, row := range rows {
		mapped := make(Row, len(newColumns))
		for j, col := range newColumns {
			mapped[col] = row[t.Columns[j]]
		}
		out.Rows[i] = mapped
	}
	return out
}
