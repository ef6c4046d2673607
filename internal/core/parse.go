package core

// parse.go turns raw uploaded bytes into a normalized Table.
//
// Normalization guarantees:
//   - records are split with encoding/csv using the chosen delimiter,
//     respecting quoting
//   - ragged records are reconciled deterministically: short records are
//     padded with empty values, long records are truncated to the width of
//     the first record (never silently dropped)
//   - header names are unique after parsing; duplicates get a numeric
//     suffix, blanks become Column_N

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Delimiter identifies one of the supported field separators. It is fixed at
// parse time; changing it requires a re-parse of the stored raw bytes.
type Delimiter string

const (
	DelimiterComma     Delimiter = "comma"
	DelimiterSemicolon Delimiter = "semicolon"
	DelimiterTab       Delimiter = "tab"
	DelimiterPipe      Delimiter = "pipe"
)

// ParseDelimiter resolves a token or literal separator character.
func ParseDelimiter(s string) (Delimiter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "comma", ",":
		return DelimiterComma, nil
	case "semicolon", ";":
		return DelimiterSemicolon, nil
	case "tab", "\t", `\t`:
		return DelimiterTab, nil
	case "pipe", "|":
		return DelimiterPipe, nil
	}
	return "", fmt.Errorf("unsupported delimiter %q", s)
}

// Rune returns the separator character for the delimiter.
func (d Delimiter) Rune() rune {
	switch d {
	case DelimiterSemicolon:
		return ';'
	case DelimiterTab:
		return '\t'
	case DelimiterPipe:
		return '|'
	default:
		return ','
	}
}

// ParseOptions controls how raw bytes become a Table.
type ParseOptions struct {
	Delimiter Delimiter
	// UseHeader treats the first record as column names. When false,
	// synthetic Column_1..Column_N names are generated and the first record
	// is ordinary data.
	UseHeader bool
	// MaxSize caps the accepted content length in bytes. Zero means no cap.
	MaxSize int64
}

// Parse converts raw CSV bytes into a normalized Table.
// It fails with *ParseError on empty, oversized, or undecodable content and
// never mutates any existing session state.
func Parse(data []byte, opts ParseOptions) (Table, error) {
	if len(data) == 0 {
		return Table{}, &ParseError{Reason: "empty file"}
	}
	if opts.MaxSize > 0 && int64(len(data)) > opts.MaxSize {
		return Table{}, &ParseError{Reason: fmt.Sprintf("file too large: %d bytes exceeds limit of %d", len(data), opts.MaxSize)}
	}

	text, err := decodeText(data)
	if err != nil {
		return Table{}, &ParseError{Reason: "undecodable content", Err: err}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = opts.Delimiter.Rune()
	reader.FieldsPerRecord = -1 // ragged records reconciled below
	reader.LazyQuotes = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, &ParseError{Reason: "invalid csv", Err: err}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return Table{}, &ParseError{Reason: "empty file"}
	}

	width := len(records[0])
	if width == 0 {
		return Table{}, &ParseError{Reason: "first record has no fields"}
	}
	for i, rec := range records {
		records[i] = normalizeWidth(rec, width)
	}

	var columns []string
	var dataRecords [][]string
	if opts.UseHeader {
		columns = normalizeHeader(records[0])
		dataRecords = records[1:]
	} else {
		columns = syntheticColumns(width)
		dataRecords = records
	}

	rows := make([]Row, len(dataRecords))
	for i, rec := range dataRecords {
		row := make(Row, width)
		for j, col := range columns {
			row[col] = rec[j]
		}
		rows[i] = row
	}

	return Table{Columns: columns, Rows: rows}, nil
}

// normalizeWidth pads short records with empty values and truncates long
// records to the width of the first record.
func normalizeWidth(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	if len(rec) > width {
		return rec[:width]
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}

// normalizeHeader produces unique, non-empty column names from the first
// record. All-whitespace cells become Column_N; duplicates get a _2, _3...
// suffix. Other values are kept verbatim, so demoting a header back to a
// data row restores the original cells.
func normalizeHeader(rec []string) []string {
	columns := make([]string, len(rec))
	taken := make(map[string]bool, len(rec))
	for i, raw := range rec {
		name := raw
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		if taken[name] {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if !taken[name] {
					break
				}
			}
		}
		taken[name] = true
		columns[i] = name
	}
	return columns
}

// syntheticColumns generates Column_1..Column_N names.
func syntheticColumns(width int) []string {
	columns := make([]string, width)
	for i := range columns {
		columns[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return columns
}

// decodeText strips a UTF-8 BOM and returns valid UTF-8 text. Input that is
// not valid UTF-8 is decoded as Windows-1252, the usual encoding of CSV
// exports from spreadsheet tools.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
