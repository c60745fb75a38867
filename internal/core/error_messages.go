// Package core provides the profiling and chart-aggregation engine of datadash.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Upload a smaller file or remove unused columns
//	          Sentinel: ErrFileTooLarge; Patterns: "file too large", "request body too large"
//
//	FILE002 - Unsupported format: Unsupported file format
//	          Action: Upload CSV or Excel
//	          Sentinel: ingest.ErrUnsupportedFormat
//
//	FILE003 - Decode error: The file could not be read
//	          Action: Check that the file is not damaged and re-export it
//	          Sentinel: ingest.ErrDecode
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a file to upload
//	          Sentinel: ErrNoFile; Patterns: "no such file", "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Upload a file with a header row and data rows
//	          Sentinel: ingest.ErrEmptyFile
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - Data expired: Uploaded data expired. Please upload again.
//	          Action: Upload the file again
//	          Sentinel: store.ErrDataExpired
//
// # Ingest Errors (ING001-ING099)
//
//	ING001 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Sentinel: ErrTooManyIngests
//
// # Dashboard Errors (DASH001-DASH099)
//
//	DASH001 - Invalid name: Dashboard name is not valid
//	          Sentinel: store.ErrInvalidName
//
//	DASH002 - Invalid config: Dashboard configuration is not valid JSON
//	          Sentinel: ErrInvalidDashboardConfig
//
//	DASH003 - Not found: Dashboard not found
//	          Sentinel: store.ErrDashboardNotFound
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled (context.Canceled)
//	REQ002 - Request timeout (context.DeadlineExceeded, "timeout")
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Sentinels are checked first with errors.Is, in table order, so an error
// wrapping both ingest.ErrEmptyFile and ingest.ErrDecode maps to FILE005.
// Errors that match no sentinel fall back to case-insensitive substring
// patterns; the first match wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/datadash/internal/ingest"
	"github.com/JonMunkholm/datadash/internal/store"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when a request carries no file part.
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidDashboardConfig is returned when a dashboard config is not JSON.
	ErrInvalidDashboardConfig = errors.New("invalid dashboard config")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Upload a smaller file or remove unused columns",
		Code:    "FILE001",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to upload",
		Code:    "FILE004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "REQ002",
	}
)

type sentinelMessage struct {
	target error
	msg    UserMessage
}

// sentinelMessages is checked before errorPatterns. Order matters where one
// error can match several targets.
var sentinelMessages = []sentinelMessage{
	{ingest.ErrEmptyFile, UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row and data rows",
		Code:    "FILE005",
	}},
	{ingest.ErrUnsupportedFormat, UserMessage{
		Message: "Unsupported file format. Upload CSV or Excel.",
		Action:  "Upload a .csv, .xlsx, .xls or .parquet file",
		Code:    "FILE002",
	}},
	{ingest.ErrDecode, UserMessage{
		Message: "The file could not be read",
		Action:  "Check that the file is not damaged and re-export it",
		Code:    "FILE003",
	}},
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrNoFile, msgNoFile},
	{store.ErrDataExpired, UserMessage{
		Message: "Uploaded data expired. Please upload again.",
		Action:  "Upload the file again",
		Code:    "DATA001",
	}},
	{ErrTooManyIngests, UserMessage{
		Message: "Too many uploads in progress",
		Action:  "Please wait a moment and try again",
		Code:    "ING001",
	}},
	{store.ErrInvalidName, UserMessage{
		Message: "Dashboard name is not valid",
		Action:  "Use letters, digits, dashes or underscores",
		Code:    "DASH001",
	}},
	{ErrInvalidDashboardConfig, UserMessage{
		Message: "Dashboard configuration is not valid JSON",
		Action:  "Save the dashboard again from the chart page",
		Code:    "DASH002",
	}},
	{store.ErrDashboardNotFound, UserMessage{
		Message: "Dashboard not found",
		Action:  "Check the name in the dashboard list",
		Code:    "DASH003",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors that arrive as plain text, e.g. from
// net/http or the database driver. Matched case-insensitively.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg:     msgFileTooLarge,
	},
	{
		pattern: "file too large",
		msg:     msgFileTooLarge,
	},
	{
		pattern: "no such file",
		msg:     msgNoFile,
	},
	{
		pattern: "no file provided",
		msg:     msgNoFile,
	},
	{
		pattern: "timeout",
		msg:     msgTimeout,
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := svc.Chart(ctx, handle, q)
//	msg := MapError(err)
//	// msg.Code == "DATA001" when the snapshot is gone
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
