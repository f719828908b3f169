package method

import (
	"errors"
	"fmt"
)

// ParseErrorCode categorizes method-name parse failures.
type ParseErrorCode string

const (
	// ErrCodeInvalidMethodName indicates the name does not follow the
	// derived-query grammar. Fatal at bind time.
	ErrCodeInvalidMethodName ParseErrorCode = "INVALID_METHOD_NAME"
)

// ParseError reports a method name that does not conform to the grammar.
type ParseError struct {
	Code    ParseErrorCode
	Name    string
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %q", e.Code, e.Message, e.Name)
}

// IsInvalidMethodName returns true if err is a grammar violation.
// Uses errors.As to handle wrapped errors.
func IsInvalidMethodName(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeInvalidMethodName
	}
	return false
}
