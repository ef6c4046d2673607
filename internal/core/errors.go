package core

// errors.go defines the error taxonomy for the edit pipeline.
//
// All core operations return a failure value rather than aborting; a failed
// operation leaves the session's current table exactly as it was before the
// attempt. The web layer maps these errors to user-facing messages via
// MapError (see error_messages.go).

import (
	"errors"
	"fmt"
)

// ErrNothingToUndo is the recoverable no-op reported when undo is requested
// with an empty history. It is not a failure: the current table is unchanged.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrSessionNotFound is returned when a session ID does not resolve, either
// because it never existed or because it expired and was swept.
var ErrSessionNotFound = errors.New("session not found")

// ParseError describes a rejected upload: empty, oversized, or undecodable
// content. Session state is untouched when parsing fails.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse csv: %s: %v", e.Reason, e.Err)
	}
	return "parse csv: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// EditError describes a rejected mutation: out-of-bounds index, duplicate or
// missing column name, or deleting the last remaining column.
type EditError struct {
	Op     string // operation that was rejected, e.g. "delete_column"
	Reason string
}

func (e *EditError) Error() string {
	return e.Op + ": " + e.Reason
}

// GenerationError describes invalid identifiers supplied to the SQL
// generator (empty catalog, schema, or table name).
type GenerationError struct {
	Field  string
	Reason string
}

func (e *GenerationError) Error() string {
	return "generate sql: " + e.Field + ": " + e.Reason
}

// AdapterErrorKind classifies remote failures so callers can distinguish an
// auth problem from a transient network fault from a bad statement.
type AdapterErrorKind string

const (
	AdapterAuth       AdapterErrorKind = "auth"
	AdapterPermission AdapterErrorKind = "permission"
	AdapterNetwork    AdapterErrorKind = "network"
	AdapterSQL        AdapterErrorKind = "sql"
	AdapterRemote     AdapterErrorKind = "remote"
)

// AdapterError wraps a failure reported by the remote workspace. The core
// never retries these; they surface verbatim to the caller. Detail must never
// contain credentials.
type AdapterError struct {
	Kind   AdapterErrorKind
	Op     string // "upload" or "execute"
	Detail string
	Err    error
}

func (e *AdapterError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s failure: %s", e.Op, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
}

func (e *AdapterError) Unwrap() error { return e.Err }
