package core

// errors.go maps engine errors to user-friendly messages. Only fatal
// errors pass through here - data problems are findings in the report
// and never become errors.
//
// Codes are grouped by category so users can quote them to support:
//
//	SCH001 - Missing schema: no ruleset defines the requested table
//	SCH002 - Bad ruleset: the schema configuration could not be parsed
//	LOAD001 - Empty file
//	LOAD002 - No header row
//	LOAD003 - Unreadable encoding
//	LOAD004 - Missing input: a table was not supplied
//	RUN001 - Cancelled or timed out
//	ERR000 - Fallback for anything unmatched

import (
	"context"
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// MapError converts a fatal engine error to a UserMessage.
func MapError(err error) UserMessage {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		if strings.Contains(schemaErr.Reason, "no specification") {
			return UserMessage{
				Message: "No validation rules are defined for the " + string(schemaErr.Role) + " table",
				Action:  "Check the schema configuration file",
				Code:    "SCH001",
			}
		}
		return UserMessage{
			Message: "The schema configuration is invalid: " + schemaErr.Reason,
			Action:  "Fix the schema file and try again",
			Code:    "SCH002",
		}
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		switch {
		case strings.Contains(loadErr.Reason, "empty file"):
			return UserMessage{
				Message: "The " + string(loadErr.Role) + " file is empty",
				Action:  "Upload a file with a header row and data rows",
				Code:    "LOAD001",
			}
		case strings.Contains(loadErr.Reason, "no header"):
			return UserMessage{
				Message: "The " + string(loadErr.Role) + " file has no header row",
				Action:  "Ensure the first row lists the column names",
				Code:    "LOAD002",
			}
		case strings.Contains(loadErr.Reason, "encoding"):
			return UserMessage{
				Message: "The " + string(loadErr.Role) + " file is not readable text",
				Action:  "Save the file as UTF-8 encoded delimited text",
				Code:    "LOAD003",
			}
		default:
			return UserMessage{
				Message: "The " + string(loadErr.Role) + " file could not be read",
				Action:  "Check that the file was supplied and is readable",
				Code:    "LOAD004",
			}
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return UserMessage{
			Message: "The validation run was cancelled",
			Action:  "Try again",
			Code:    "RUN001",
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or check the server logs",
		Code:    "ERR000",
	}
}
