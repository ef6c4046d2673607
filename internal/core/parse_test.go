package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	table, err := Parse([]byte("a,b\n1,2\n3,4"), ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table.Columns) != 2 || table.Columns[0] != "a" || table.Columns[1] != "b" {
		t.Errorf("columns = %v, want [a b]", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["a"] != "1" || table.Rows[0]["b"] != "2" {
		t.Errorf("row 0 = %v, want a=1 b=2", table.Rows[0])
	}
	if table.Rows[1]["a"] != "3" || table.Rows[1]["b"] != "4" {
		t.Errorf("row 1 = %v, want a=3 b=4", table.Rows[1])
	}
}

func TestParseDelimiters(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter Delimiter
	}{
		{"comma", "a,b\n1,2", DelimiterComma},
		{"semicolon", "a;b\n1;2", DelimiterSemicolon},
		{"tab", "a\tb\n1\t2", DelimiterTab},
		{"pipe", "a|b\n1|2", DelimiterPipe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.input), ParseOptions{Delimiter: tt.delimiter, UseHeader: true})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(table.Columns) != 2 {
				t.Fatalf("expected 2 columns, got %v", table.Columns)
			}
			if table.Rows[0]["a"] != "1" || table.Rows[0]["b"] != "2" {
				t.Errorf("row 0 = %v, want a=1 b=2", table.Rows[0])
			}
		})
	}
}

func TestParseDelimiterTokens(t *testing.T) {
	tests := []struct {
		input string
		want  Delimiter
		ok    bool
	}{
		{"comma", DelimiterComma, true},
		{",", DelimiterComma, true},
		{"", DelimiterComma, true},
		{"semicolon", DelimiterSemicolon, true},
		{";", DelimiterSemicolon, true},
		{"tab", DelimiterTab, true},
		{"\t", DelimiterTab, true},
		{`\t`, DelimiterTab, true},
		{"pipe", DelimiterPipe, true},
		{"|", DelimiterPipe, true},
		{"colon", "", false},
	}

	for _, tt := range tests {
		got, err := ParseDelimiter(tt.input)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseDelimiter(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseDelimiter(%q) should fail", tt.input)
		}
	}
}

func TestParseSyntheticColumns(t *testing.T) {
	table, err := Parse([]byte("1,2\n3,4"), ParseOptions{Delimiter: DelimiterComma, UseHeader: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Columns[0] != "Column_1" || table.Columns[1] != "Column_2" {
		t.Errorf("columns = %v, want [Column_1 Column_2]", table.Columns)
	}
	// The first record stays in the data
	if len(table.Rows) != 2 || table.Rows[0]["Column_1"] != "1" {
		t.Errorf("rows = %v, want first record kept as data", table.Rows)
	}
}

func TestParseDuplicateHeaders(t *testing.T) {
	table, err := Parse([]byte("id,id,id\n1,2,3"), ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"id", "id_2", "id_3"}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Errorf("columns = %v, want %v", table.Columns, want)
			break
		}
	}
	if table.Rows[0]["id_3"] != "3" {
		t.Errorf("row 0 = %v, want id_3=3", table.Rows[0])
	}
}

func TestParseBlankHeaderCell(t *testing.T) {
	table, err := Parse([]byte("a,,c\n1,2,3"), ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Columns[1] != "Column_2" {
		t.Errorf("blank header cell became %q, want Column_2", table.Columns[1])
	}
}

func TestParseRaggedRows(t *testing.T) {
	// Short records are padded, long records are truncated to the width of
	// the first record.
	table, err := Parse([]byte("a,b,c\n1\n1,2,3,4"), ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["b"] != "" || table.Rows[0]["c"] != "" {
		t.Errorf("short row not padded: %v", table.Rows[0])
	}
	if len(table.Rows[1]) != 3 || table.Rows[1]["c"] != "3" {
		t.Errorf("long row not truncated: %v", table.Rows[1])
	}
	if err := table.Validate(); err != nil {
		t.Errorf("normalized table violates invariants: %v", err)
	}
}

func TestParseQuotedFields(t *testing.T) {
	table, err := Parse([]byte("a,b\n\"1,5\",\"two\nlines\""), ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0]["a"] != "1,5" {
		t.Errorf("quoted delimiter not preserved: %q", table.Rows[0]["a"])
	}
	if table.Rows[0]["b"] != "two\nlines" {
		t.Errorf("quoted newline not preserved: %q", table.Rows[0]["b"])
	}
}

func TestParseBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2")...)
	table, err := Parse(data, ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Columns[0] != "a" {
		t.Errorf("BOM not stripped: first column = %q", table.Columns[0])
	}
}

func TestParseWindows1252Fallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid standalone UTF-8.
	data := []byte{'n', 'a', 'm', 'e', '\n', 'r', 0xE9, 's', 'u', 'm', 0xE9}
	table, err := Parse(data, ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Rows[0]["name"]; got != "résumé" {
		t.Errorf("decoded value = %q, want résumé", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts ParseOptions
	}{
		{"empty content", nil, ParseOptions{Delimiter: DelimiterComma, UseHeader: true}},
		{"oversized content", []byte("a,b\n1,2"), ParseOptions{Delimiter: DelimiterComma, UseHeader: true, MaxSize: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data, tt.opts)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
		})
	}
}

func TestParseOnlyHeader(t *testing.T) {
	table, err := Parse([]byte("a,b,c"), ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("expected zero rows, got %d", len(table.Rows))
	}
	if len(table.Columns) != 3 {
		t.Errorf("expected 3 columns, got %v", table.Columns)
	}
}

func TestParseLargeFieldQuoting(t *testing.T) {
	long := strings.Repeat("x", 10000)
	table, err := Parse([]byte("a\n"+long), ParseOptions{Delimiter: DelimiterComma, UseHeader: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0]["a"] != long {
		t.Errorf("long field truncated: len=%d", len(table.Rows[0]["a"]))
	}
}
