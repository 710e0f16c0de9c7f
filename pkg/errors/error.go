// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, configuration, periods
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable sources
//   - Ledger errors (300-399): Schema violations, bad timestamps, missing seed entries
//   - Metric errors (400-499): Unknown metrics and calculation failures
//   - Cache errors (500-599): Balance cache availability and writes
//   - Report errors (600-699): Result export failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to store balances", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeCacheUnavailable) { ... }
//
// Ledger problems are reported as *LedgerSchemaError and balance metrics invoked for an
// account without a seed entry report *MissingSeedError.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Typed ledger errors report their own codes.
// Returns ErrCodeUnknown if the error carries no code.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var schemaErr *LedgerSchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Code
	}

	var seedErr *MissingSeedError
	if errors.As(err, &seedErr) {
		return ErrCodeMissingSeed
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// NoRow marks a LedgerSchemaError that is not tied to a single row.
const NoRow = -1

// LedgerSchemaError reports a ledger that violates the canonical schema:
// a missing required column, an unparseable timestamp, a duplicate row id
// or an unknown event type.
type LedgerSchemaError struct {
	Code    ErrorCode
	Row     int    // Offending row index, NoRow for table-level problems
	Column  string // Offending column, empty when not applicable
	Message string
}

// NewLedgerSchemaError creates a new LedgerSchemaError.
func NewLedgerSchemaError(code ErrorCode, row int, column, message string) *LedgerSchemaError {
	return &LedgerSchemaError{
		Code:    code,
		Row:     row,
		Column:  column,
		Message: message,
	}
}

// NewLedgerSchemaErrorf creates a new LedgerSchemaError with a formatted message.
func NewLedgerSchemaErrorf(code ErrorCode, row int, column, format string, args ...any) *LedgerSchemaError {
	return NewLedgerSchemaError(code, row, column, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *LedgerSchemaError) Error() string {
	if e.Row == NoRow {
		return fmt.Sprintf("ledger schema error [%d]: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("ledger schema error [%d] at row %d: %s", e.Code, e.Row, e.Message)
}

// IsLedgerSchemaError checks if an error is a LedgerSchemaError.
func IsLedgerSchemaError(err error) bool {
	var schemaErr *LedgerSchemaError

	return errors.As(err, &schemaErr)
}

// MissingSeedError reports a balance-derived metric invoked for an account
// that has no initial balance entry.
type MissingSeedError struct {
	AccountID string
}

// NewMissingSeedError creates a new MissingSeedError.
func NewMissingSeedError(accountID string) *MissingSeedError {
	return &MissingSeedError{AccountID: accountID}
}

// Error implements the error interface.
func (e *MissingSeedError) Error() string {
	return fmt.Sprintf("account %q has no initial balance entry", e.AccountID)
}

// IsMissingSeedError checks if an error is a MissingSeedError.
func IsMissingSeedError(err error) bool {
	var seedErr *MissingSeedError

	return errors.As(err, &seedErr)
}

// IsCacheUnavailable checks if an error reports an unreachable cache backend.
func IsCacheUnavailable(err error) bool {
	return HasCode(err, ErrCodeCacheUnavailable)
}
