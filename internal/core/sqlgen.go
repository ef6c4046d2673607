package core

// sqlgen.go renders the CREATE TABLE statement that materializes an uploaded
// CSV as a managed Delta table.
//
// The statement is a single CTAS over read_files: every column is CAST to
// its inferred type and aliased to the edited column name, so the warehouse
// loads the file exactly as the user last saw it in the editor. Generation
// is pure; the same inputs always render byte-identical SQL. Execution is
// the remote adapter's job.

import (
	"fmt"
	"strings"
	"unicode"
)

// SQLTarget names the destination table and the volume file to load from.
type SQLTarget struct {
	Catalog string
	Schema  string
	Table   string
	// SourcePath is the volume path of the uploaded CSV, e.g.
	// /Volumes/main/default/csv_uploads/data.csv.
	SourcePath string
}

// GenerateCreateTable renders the CTAS statement for the given schema.
//
// Identifiers are always backtick-quoted (embedded backticks doubled) and
// the source path is rendered as an escaped string literal; nothing is
// interpolated raw. When the uploaded file carries no header row,
// read_files names columns _c0.._cN and the SELECT aliases them back to the
// editor's column names.
func GenerateCreateTable(target SQLTarget, schema []ColumnType, delimiter Delimiter, useHeader bool) (string, error) {
	switch {
	case strings.TrimSpace(target.Catalog) == "":
		return "", &GenerationError{Field: "catalog", Reason: "must not be empty"}
	case strings.TrimSpace(target.Schema) == "":
		return "", &GenerationError{Field: "schema", Reason: "must not be empty"}
	case strings.TrimSpace(target.Table) == "":
		return "", &GenerationError{Field: "table", Reason: "must not be empty"}
	case strings.TrimSpace(target.SourcePath) == "":
		return "", &GenerationError{Field: "source path", Reason: "must not be empty"}
	case len(schema) == 0:
		return "", &GenerationError{Field: "columns", Reason: "table has no columns"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE TABLE %s.%s.%s AS\nSELECT\n",
		QuoteIdentifier(target.Catalog),
		QuoteIdentifier(target.Schema),
		QuoteIdentifier(target.Table),
	)

	for i, col := range schema {
		source := QuoteIdentifier(col.Name)
		if !useHeader {
			// Headerless files surface as _c0.._cN from read_files.
			source = QuoteIdentifier(fmt.Sprintf("_c%d", i))
		}
		fmt.Fprintf(&b, "  CAST(%s AS %s) AS %s", source, col.Type, QuoteIdentifier(col.Name))
		if i < len(schema)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "FROM read_files(\n  %s,\n  format => 'csv',\n  header => %t,\n  delimiter => %s,\n  inferSchema => false\n)",
		QuoteStringLiteral(target.SourcePath),
		useHeader,
		QuoteStringLiteral(string(delimiter.Rune())),
	)

	return b.String(), nil
}

// QuoteIdentifier backtick-quotes a Databricks SQL identifier, doubling any
// embedded backticks. Applied unconditionally so reserved characters in user
// supplied column or table names cannot break out of the identifier.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteStringLiteral single-quotes a SQL string literal, escaping embedded
// quotes and backslashes.
func QuoteStringLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}

// DefaultTableName derives a table name from an upload filename: the .csv
// extension is dropped, spaces and hyphens become underscores, any other
// character that is not a letter, digit, or underscore is removed, and the
// result is lowercased.
func DefaultTableName(fileName string) string {
	name := strings.TrimSuffix(fileName, ".csv")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VolumeFilePath joins a /Volumes root with the upload filename, appending a
// .csv extension when missing.
func VolumeFilePath(catalog, schema, volume, fileName string) string {
	if fileName == "" {
		fileName = "uploaded_data"
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".csv") {
		fileName += ".csv"
	}
	return fmt.Sprintf("/Volumes/%s/%s/%s/%s", catalog, schema, volume, fileName)
}
