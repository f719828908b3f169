package binder

import (
	"errors"
	"fmt"
)

// BindErrorCode categorizes method-binding failures. All of them are
// fatal at boot time.
type BindErrorCode string

const (
	// ErrCodeInvalidSignature indicates the declared parameter set does
	// not match the fields the method name requires.
	ErrCodeInvalidSignature BindErrorCode = "INVALID_SIGNATURE"

	// ErrCodeAmbiguousParameter indicates a parameter name could not be
	// resolved to exactly one required field.
	ErrCodeAmbiguousParameter BindErrorCode = "AMBIGUOUS_PARAMETER"
)

// BindError reports a declared method that cannot be bound.
type BindError struct {
	Code       BindErrorCode
	Repository string
	Method     string
	Message    string
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", e.Code, e.Repository, e.Method, e.Message)
}

// IsInvalidSignature returns true if err is a parameter-set mismatch.
// Uses errors.As to handle wrapped errors.
func IsInvalidSignature(err error) bool {
	var be *BindError
	if errors.As(err, &be) {
		return be.Code == ErrCodeInvalidSignature
	}
	return false
}

// IsAmbiguousParameter returns true if err is a parameter-mapping
// failure. Uses errors.As to handle wrapped errors.
func IsAmbiguousParameter(err error) bool {
	var be *BindError
	if errors.As(err, &be) {
		return be.Code == ErrCodeAmbiguousParameter
	}
	return false
}
