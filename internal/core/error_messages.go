package core

// # Error Codes Reference
//
// User-facing errors carry a code that support staff can look up. Codes are
// grouped by category:
//
//	TBL001  - Empty table: the dataset has no rows to work with
//	COL001  - Column not found: a requested column is not part of the dataset
//	TYPE001 - Type mismatch: a numeric or date operation on the wrong column type
//	VAL001  - Invalid strategy: unknown imputation strategy
//	VAL002  - Invalid value: a fill value does not match the column type
//	FILE001 - File too large
//	FILE002 - Invalid CSV
//	FILE003 - Encoding error
//	FILE004 - No file provided
//	FILE005 - Empty file
//	SES001  - Session not found
//	SES002  - System busy: too many datasets loading at once
//	DB004   - Connection refused (SQL source)
//	DB006   - Timeout
//	ERR000  - Fallback when nothing matches
//
// Sentinel errors are matched with errors.Is first. Anything else is matched
// case-insensitively against the pattern list; the first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgEmptyTable = UserMessage{
		Message: "The dataset has no rows",
		Action:  "Upload a file with data rows or undo the last filter",
		Code:    "TBL001",
	}
	msgMissingColumn = UserMessage{
		Message: "Column not found in dataset",
		Action:  "Check the column name against the data dictionary",
		Code:    "COL001",
	}
	msgTypeMismatch = UserMessage{
		Message: "Operation does not apply to this column type",
		Action:  "Use Mode or Drop for text columns, or standardize dates first",
		Code:    "TYPE001",
	}
	msgUnknownStrategy = UserMessage{
		Message: "Unknown imputation strategy",
		Action:  "Use one of Mean, Median, Mode or Drop",
		Code:    "VAL001",
	}
)

// sentinelMessages maps sentinel errors to user messages.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrEmptyTable, msgEmptyTable},
	{ErrMissingColumn, msgMissingColumn},
	{ErrTypeMismatch, msgTypeMismatch},
	{ErrUnknownStrategy, msgUnknownStrategy},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (lowercase) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid fill value",
		msg: UserMessage{
			Message: "Fill value does not match the column type",
			Action:  "Enter a number for numeric columns or a date for date columns",
			Code:    "VAL002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Session not found",
			Action:  "The session may have expired. Please upload the dataset again",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many loads",
		msg: UserMessage{
			Message: "System is busy loading other datasets",
			Action:  "Please wait a moment and try again",
			Code:    "SES002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller query or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller query or try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
