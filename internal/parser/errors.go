package parser

import (
	"fmt"
	"strings"
)

// ParseError represents a decoding error with location information.
type ParseError struct {
	Line    int    // Line number where the error occurred (1-based)
	Column  int    // Column number where the error occurred (1-based)
	Message string // Error message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new ParseError.
func NewParseError(line, column int, message string, cause error) *ParseError {
	return &ParseError{
		Line:    line,
		Column:  column,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError carries every message the validator produced for a rejected
// workflow definition. It is fatal to the parse step only; no execution has
// started when it is returned.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface, joining the individual messages.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid workflow: %s", strings.Join(e.Messages, ", "))
}

// NewValidationError creates a ValidationError from the validator's messages.
func NewValidationError(messages []string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// IsValidationError reports whether err is a workflow validation failure.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}
