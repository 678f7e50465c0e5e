// Package errors provides custom error types for the contact sync pipeline
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred
type ErrorCode string

const (
	ErrCodeTransportFailure  ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeRemoteRejection   ErrorCode = "REMOTE_REJECTION"
	ErrCodeMalformedDocument ErrorCode = "MALFORMED_DOCUMENT"
	ErrCodeRecordNotFound    ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeStorageFailure    ErrorCode = "STORAGE_FAILURE"
)

// Operation represents the type of sync operation
type Operation string

const (
	OpFetch    Operation = "fetch"
	OpPush     Operation = "push"
	OpMap      Operation = "map"
	OpClassify Operation = "classify"
	OpStore    Operation = "store"
	OpLoad     Operation = "load"
	OpSubmit   Operation = "submit"
	OpClose    Operation = "close"
)

// CalloutError represents an error that occurred during a callout cycle
type CalloutError struct {
	// Operation during which the error occurred
	Op Operation

	// Component that generated the error (e.g., "store", "callout")
	Component string

	// Underlying error
	Err error

	// Whether the record can be re-driven by a later mutation
	Recoverable bool

	// Error code for the error type
	Code ErrorCode

	// Metadata for additional context
	Metadata map[string]interface{}
}

func (e *CalloutError) Error() string {
	var msg string
	if e.Component != "" {
		msg = fmt.Sprintf("%s operation failed in %s component", e.Op, e.Component)
	} else {
		msg = fmt.Sprintf("%s operation failed", e.Op)
	}

	if e.Code != "" {
		msg += fmt.Sprintf(" [%s]", e.Code)
	}

	return msg + fmt.Sprintf(": %v", e.Err)
}

func (e *CalloutError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a CalloutError for an HTTP exchange that could not complete
func NewTransportError(op Operation, cause error) *CalloutError {
	return &CalloutError{
		Code:        ErrCodeTransportFailure,
		Op:          op,
		Component:   "transport",
		Err:         cause,
		Recoverable: true,
	}
}

// NewRejectionError creates a CalloutError for a non-success status code
func NewRejectionError(op Operation, status int, cause error) *CalloutError {
	return &CalloutError{
		Code:        ErrCodeRemoteRejection,
		Op:          op,
		Component:   "callout",
		Err:         cause,
		Recoverable: true,
		Metadata:    map[string]interface{}{"status": status},
	}
}

// NewMalformedError creates a CalloutError for a response body not shaped as expected
func NewMalformedError(op Operation, cause error) *CalloutError {
	return &CalloutError{
		Code:        ErrCodeMalformedDocument,
		Op:          op,
		Component:   "mapper",
		Err:         cause,
		Recoverable: true,
	}
}

// NewNotFoundError creates a CalloutError for a storage lookup miss
func NewNotFoundError(op Operation, cause error) *CalloutError {
	return &CalloutError{
		Code:        ErrCodeRecordNotFound,
		Op:          op,
		Component:   "store",
		Err:         cause,
		Recoverable: true,
	}
}

// NewStorageError creates a storage-related CalloutError
func NewStorageError(op Operation, cause error) *CalloutError {
	return &CalloutError{
		Code:        ErrCodeStorageFailure,
		Op:          op,
		Component:   "store",
		Err:         cause,
		Recoverable: true,
	}
}

// New creates a new CalloutError
func New(op Operation, err error) *CalloutError {
	return &CalloutError{
		Op:  op,
		Err: err,
	}
}

// NewWithComponent creates a new CalloutError with component information
func NewWithComponent(op Operation, component string, err error) *CalloutError {
	return &CalloutError{
		Op:        op,
		Component: component,
		Err:       err,
	}
}

// IsRecoverable checks if an error is a recoverable CalloutError
func IsRecoverable(err error) bool {
	var calloutErr *CalloutError
	if errors.As(err, &calloutErr) {
		return calloutErr.Recoverable
	}
	return false
}

// CodeOf extracts the ErrorCode from an error chain, or "" if none
func CodeOf(err error) ErrorCode {
	var calloutErr *CalloutError
	if errors.As(err, &calloutErr) {
		return calloutErr.Code
	}
	return ""
}
