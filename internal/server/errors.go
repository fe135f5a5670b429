package server

import (
	"errors"
	"fmt"
)

// Error represents a server error
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// ErrorCode represents different types of server errors
type ErrorCode int

const (
	ErrInvalidRequest ErrorCode = iota + 1
	ErrStorageUnavailable
	ErrStorage
	ErrUpload
	ErrAnalysis
	ErrServerStart
	ErrServerShutdown
)

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new server error
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsInvalidRequest checks if the error is an invalid request error
func IsInvalidRequest(err error) bool {
	return hasCode(err, ErrInvalidRequest)
}

// IsStorageUnavailable checks if the error reports a missing storage backend
func IsStorageUnavailable(err error) bool {
	return hasCode(err, ErrStorageUnavailable)
}

// IsServerStart checks if the error happened while binding the listener
func IsServerStart(err error) bool {
	return hasCode(err, ErrServerStart)
}
