package expression

import "fmt"

// ParseError represents a condition that does not match the grammar.
type ParseError struct {
	Position int
	Expected string
	Got      string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("condition parse error at position %d: expected %s, got %s", e.Position, e.Expected, e.Got)
}

// NewParseError creates a new ParseError.
func NewParseError(pos int, expected, got string) *ParseError {
	return &ParseError{Position: pos, Expected: expected, Got: got}
}

// EvaluationError represents a comparison that could not be evaluated, for
// example a numeric comparison over a non-numeric operand.
type EvaluationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("condition evaluation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("condition evaluation error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// NewEvaluationError creates a new EvaluationError.
func NewEvaluationError(message string, cause error) *EvaluationError {
	return &EvaluationError{Message: message, Cause: cause}
}
