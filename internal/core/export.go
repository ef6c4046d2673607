package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ExportCSV serializes a table back to CSV bytes using the delimiter and
// header settings the session was parsed with, so the uploaded file
// round-trips through Parse.
func ExportCSV(t Table, delimiter Delimiter, useHeader bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter.Rune()

	if useHeader {
		if err := w.Write(t.Columns); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, col := range t.Columns {
			record[j] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportCSV serializes the session's current table with its own parse-time
// settings. The export works from a cloned snapshot, so an edit
// racing an in-flight upload cannot corrupt the bytes being sent.
func (s *Session) ExportCSV() ([]byte, error) {
	s.mu.Lock()
	table := s.current.Clone()
	delimiter := s.delimiter
	useHeader := s.useHeader
	s.mu.Unlock()

	return ExportCSV(table, delimiter, useHeader)
}
