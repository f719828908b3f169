package querysql

import (
	"errors"
	"fmt"
)

// ArgumentErrorCode categorizes call-time argument failures.
type ArgumentErrorCode string

const (
	// ErrCodeInvalidArgument indicates the bound values do not match the
	// descriptor: wrong key set, or a non-collection bound to IN/NOT IN.
	// Raised to the caller per call; never fatal to the process.
	ErrCodeInvalidArgument ArgumentErrorCode = "INVALID_ARGUMENT"
)

// ArgumentError reports a bound-value shape violation at call time.
type ArgumentError struct {
	Code    ArgumentErrorCode
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidArgument returns true if err is a call-time argument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var ae *ArgumentError
	if errors.As(err, &ae) {
		return ae.Code == ErrCodeInvalidArgument
	}
	return false
}
