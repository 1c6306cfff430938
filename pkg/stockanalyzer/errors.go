package stockanalyzer

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures for structured handling and HTTP mapping.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeTransient    ErrorCode = "TRANSIENT_FETCH"
	ErrCodeGeneration   ErrorCode = "GENERATION_FAILED"
	ErrCodeInit         ErrorCode = "INIT_FAILED"
	ErrCodeBusy         ErrorCode = "BUSY"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// ErrNoData indicates the market data provider returned no session data
// for a symbol. Check with errors.Is.
var ErrNoData = errors.New("no price data available")

// Error is a structured error with a classification code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps err with a classification code and context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
