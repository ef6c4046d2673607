package core

// infer.go classifies column values into SQL types for DDL generation.
//
// The classification is all-or-nothing: a column's type is the most specific
// candidate that every non-empty sampled value satisfies, checked in order
// BOOLEAN, BIGINT, DOUBLE, DATE, TIMESTAMP, then STRING as the unconditional
// fallback. One non-conforming value anywhere in the sample demotes the
// whole column. Empty values are ignored; a column of only empty values is
// STRING. Inference is pure and deterministic.

import (
	"strconv"
	"strings"
	"time"
)

// SQLType is a Databricks SQL column type produced by inference.
type SQLType string

const (
	TypeBoolean   SQLType = "BOOLEAN"
	TypeBigInt    SQLType = "BIGINT"
	TypeDouble    SQLType = "DOUBLE"
	TypeDate      SQLType = "DATE"
	TypeTimestamp SQLType = "TIMESTAMP"
	TypeString    SQLType = "STRING"
)

// DefaultSampleRows bounds how many rows inference examines per column.
const DefaultSampleRows = 200

// ColumnType pairs a column name with its inferred type, in column order.
type ColumnType struct {
	Name string  `json:"name"`
	Type SQLType `json:"type"`
}

// candidateOrder lists types most-restrictive first. STRING is implicit.
var candidateOrder = []SQLType{TypeBoolean, TypeBigInt, TypeDouble, TypeDate, TypeTimestamp}

// dateLayouts are the date-only formats accepted for DATE inference.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// timestampLayouts are the formats accepted for TIMESTAMP inference.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
}

// InferSchema infers one SQL type per column from up to sampleRows rows.
// A non-positive sampleRows falls back to DefaultSampleRows.
func InferSchema(t Table, sampleRows int) []ColumnType {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	limit := len(t.Rows)
	if limit > sampleRows {
		limit = sampleRows
	}

	out := make([]ColumnType, len(t.Columns))
	for i, col := range t.Columns {
		values := make([]string, 0, limit)
		for _, row := range t.Rows[:limit] {
			values = append(values, row[col])
		}
		out[i] = ColumnType{Name: col, Type: inferColumn(values)}
	}
	return out
}

// inferColumn returns the most specific type all non-empty values satisfy.
func inferColumn(values []string) SQLType {
	for _, candidate := range candidateOrder {
		if allSatisfy(values, candidate) {
			return candidate
		}
	}
	return TypeString
}

// allSatisfy reports whether every non-empty value parses as the candidate
// type. A column with no non-empty values satisfies nothing, so it falls
// through to STRING.
func allSatisfy(values []string, candidate SQLType) bool {
	nonEmpty := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++
		if !satisfies(v, candidate) {
			return false
		}
	}
	return nonEmpty > 0
}

// satisfies checks a single trimmed, non-empty value against one candidate.
func satisfies(v string, candidate SQLType) bool {
	switch candidate {
	case TypeBoolean:
		switch strings.ToLower(v) {
		case "true", "false":
			return true
		}
		return false
	case TypeBigInt:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	case TypeDouble:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	case TypeDate:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, v); err == nil {
				return true
			}
		}
		return false
	case TypeTimestamp:
		for _, layout := range timestampLayouts {
			if _, err := time.Parse(layout, v); err == nil {
				return true
			}
		}
		return false
	}
	return false
}
