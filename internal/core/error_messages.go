package core

// error_messages.go maps technical errors to user-friendly messages with
// support codes.
//
// Error codes are grouped by category:
//
//	FILE001 - Empty file             FILE003 - Invalid CSV
//	FILE002 - File too large         FILE004 - Encoding error
//
//	EDIT001 - Index out of bounds    EDIT004 - Last column
//	EDIT002 - Column not found       EDIT005 - Nothing to undo
//	EDIT003 - Duplicate column
//
//	SES001  - Session expired or unknown
//
//	GEN001  - Invalid SQL target identifiers
//
//	DBX001  - Workspace auth failure     DBX004 - SQL execution failure
//	DBX002  - Permission denied          DBX005 - Remote service failure
//	DBX003  - Network failure
//
//	RATE001 - Rate limited
//	ERR000  - Unknown error (fallback)
//
// Typed errors from the taxonomy in errors.go are mapped structurally;
// anything else falls back to case-insensitive pattern matching on the error
// text, first match wins. When a user reports a code, look it up here to see
// what triggered it and what action was suggested.

import (
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is the fallback table for errors that are not part of the
// typed taxonomy. More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Split the file or remove unneeded rows",
			Code:    "FILE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with at least one row",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file could not be parsed as CSV",
			Action:  "Check the delimiter setting and quoting in the file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "undecodable",
		msg: UserMessage{
			Message: "The file contains characters that could not be decoded",
			Action:  "Save the file as UTF-8 and upload again",
			Code:    "FILE004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try again; use a smaller file if the problem persists",
			Code:    "DBX003",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts any error into a UserMessage suitable for display.
// Credentials never appear in the returned message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var parseErr *ParseError
	var editErr *EditError
	var genErr *GenerationError
	var adapterErr *AdapterError

	switch {
	case errors.Is(err, ErrNothingToUndo):
		return UserMessage{
			Message: "Nothing to undo",
			Action:  "The edit history is empty",
			Code:    "EDIT005",
		}
	case errors.Is(err, ErrSessionNotFound):
		return UserMessage{
			Message: "The editing session was not found",
			Action:  "It may have expired; upload the file again",
			Code:    "SES001",
		}
	case errors.As(err, &parseErr):
		return mapParseError(parseErr)
	case errors.As(err, &editErr):
		return mapEditError(editErr)
	case errors.As(err, &genErr):
		return UserMessage{
			Message: "The SQL target is incomplete: " + genErr.Field + " " + genErr.Reason,
			Action:  "Fill in catalog, schema, and table name",
			Code:    "GEN001",
		}
	case errors.As(err, &adapterErr):
		return mapAdapterError(adapterErr)
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}
	return defaultMessage
}

func mapParseError(err *ParseError) UserMessage {
	lower := strings.ToLower(err.Reason)
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}
	return UserMessage{
		Message: "The file could not be parsed as CSV",
		Action:  "Check the delimiter setting and quoting in the file",
		Code:    "FILE003",
	}
}

func mapEditError(err *EditError) UserMessage {
	lower := strings.ToLower(err.Reason)
	switch {
	case strings.Contains(lower, "out of bounds"):
		return UserMessage{
			Message: "That row no longer exists",
			Action:  "Refresh the table and try again",
			Code:    "EDIT001",
		}
	case strings.Contains(lower, "not found"):
		return UserMessage{
			Message: "That column no longer exists",
			Action:  "Refresh the table and try again",
			Code:    "EDIT002",
		}
	case strings.Contains(lower, "already exists"):
		return UserMessage{
			Message: "A column with that name already exists",
			Action:  "Pick a different column name",
			Code:    "EDIT003",
		}
	case strings.Contains(lower, "only remaining column"):
		return UserMessage{
			Message: "A table must keep at least one column",
			Action:  "Add another column before deleting this one",
			Code:    "EDIT004",
		}
	}
	return UserMessage{
		Message: "The edit could not be applied",
		Action:  "Refresh the table and try again",
		Code:    "EDIT001",
	}
}

func mapAdapterError(err *AdapterError) UserMessage {
	switch err.Kind {
	case AdapterAuth:
		return UserMessage{
			Message: "Databricks authentication failed",
			Action:  "Check the workspace host and access token configuration",
			Code:    "DBX001",
		}
	case AdapterPermission:
		return UserMessage{
			Message: "Permission denied by the Databricks workspace",
			Action:  "Verify you can write to the target volume and schema",
			Code:    "DBX002",
		}
	case AdapterNetwork:
		return UserMessage{
			Message: "Could not reach the Databricks workspace",
			Action:  "Check the host URL and try again in a few moments",
			Code:    "DBX003",
		}
	case AdapterSQL:
		return UserMessage{
			Message: "The warehouse rejected the SQL statement",
			Action:  "Review the generated statement and target identifiers",
			Code:    "DBX004",
		}
	}
	return UserMessage{
		Message: "The Databricks workspace reported an error",
		Action:  "Please try again; contact support if it persists",
		Code:    "DBX005",
	}
}
